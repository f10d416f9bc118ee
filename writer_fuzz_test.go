package csvstream

import (
	"bytes"
	stdcsv "encoding/csv"
	"strings"
	"testing"
)

func FuzzWriterRoundTrip(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c",
		"a|\"b,b\"|c",
		"multi\nline|z",
		"he said \"hi\"",
		"||",
		"\\|'",
	}
	for _, seed := range seeds {
		f.Add(seed, false)
		f.Add(seed, true)
	}

	f.Fuzz(func(t *testing.T, input string, crlf bool) {
		if len(input) > 1<<12 || strings.ContainsRune(input, '\r') {
			t.Skip()
		}
		record := strings.Split(input, "|")

		opts := []Option{}
		if crlf {
			opts = append(opts, WithTerminator(CRLF))
		}
		buf, err := NewWriter(opts...).WriteRecordStrings(nil, record)
		if err != nil {
			t.Fatalf("WriteRecordStrings(%q) error = %v", record, err)
		}

		r := stdcsv.NewReader(bytes.NewReader(buf))
		r.FieldsPerRecord = -1
		got, err := r.Read()
		if err != nil {
			t.Fatalf("encoding/csv rejected %q: %v", truncateForMessage(string(buf)), err)
		}
		if !recordsEqual([][]string{got}, [][]string{record}) {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q\n csv %q", got, record, truncateForMessage(string(buf)))
		}
	})
}

func recordsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func truncateForMessage(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
