package cli

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ValidCompressions lists the accepted --compress values.
var ValidCompressions = []string{"none", "gzip", "zstd"}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// compressWriter wraps w according to the --compress value. Closing the
// result flushes the compressor but leaves w open.
func compressWriter(w io.Writer, kind string) (io.WriteCloser, error) {
	switch kind {
	case "", "none":
		return nopCloser{w}, nil
	case "gzip":
		return gzip.NewWriter(w), nil
	case "zstd":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("invalid compression %q: must be one of %v", kind, ValidCompressions)
	}
}
