package csvstream

import (
	"errors"
	"slices"
	"unsafe"

	"go.uber.org/zap"

	"github.com/oleg578/csvstream/internal/fieldenc"
	"github.com/oleg578/csvstream/structure"
)

var errNilWriter = errors.New("csvstream: writer is nil")

// Worst-case output sizes reserved before each field encoder call.
const (
	delimiterReserve  = 2
	terminatorReserve = 4
)

// A scratch buffer that grew past this multiple of Capacity is not kept.
const maxScratchGrowth = 4

// HeaderState tracks whether the header row has been handled.
type HeaderState uint8

const (
	// HeaderNone means header inference is disabled.
	HeaderNone HeaderState = iota
	// HeaderWrite means the next Serialize call tries to write a header.
	HeaderWrite
	// HeaderDidWrite means a header row was written.
	HeaderDidWrite
	// HeaderDidNotWrite means the first serialized value admitted no header.
	HeaderDidNotWrite
)

var headerStateNames = [...]string{"none", "write", "did_write", "did_not_write"}

func (s HeaderState) String() string {
	if int(s) < len(headerStateNames) {
		return headerStateNames[s]
	}
	return "unknown"
}

// Writer encodes CSV records into caller-supplied byte slices.
//
// Every write method appends to buf and returns the extended slice, in the
// manner of append. The Writer never retains buf, so callers are free to
// reuse or pool buffers between calls.
//
// A Writer remembers the field count of the first record and, unless it is
// flexible, rejects later records of another length. It is not safe for
// concurrent use.
type Writer struct {
	cfg     Config
	enc     *fieldenc.Encoder
	log     *zap.Logger
	state   writerState
	scratch []byte // reused by the sequence adapters
}

type writerState struct {
	header          HeaderState
	flexible        bool
	haveFirstCount  bool
	firstFieldCount uint64
	fieldsWritten   uint64
}

// NewWriter returns a Writer using the default configuration adjusted by
// opts. It panics if the resulting configuration is invalid; use
// Config.Build to handle that case as an error.
func NewWriter(opts ...Option) *Writer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return newWriter(cfg)
}

func newWriter(cfg Config) *Writer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Writer{
		cfg: cfg,
		enc: fieldenc.New(cfg.encoderOptions()),
		log: logger.With(zap.String("component", "csvstream.writer")),
	}
	w.Reset()
	return w
}

// Reset returns the Writer to its freshly built state: the header is
// pending again and no field count is established. Configuration is kept.
func (w *Writer) Reset() {
	if w == nil {
		panic(errNilWriter.Error())
	}
	header := HeaderNone
	if w.cfg.HasHeaders {
		header = HeaderWrite
	}
	w.state = writerState{header: header, flexible: w.cfg.Flexible}
	w.enc.Reset()
}

// Config returns a copy of the Writer's configuration.
func (w *Writer) Config() Config { return w.cfg }

// HeaderState reports the header lifecycle state.
func (w *Writer) HeaderState() HeaderState { return w.state.header }

// FieldsWritten reports the number of fields in the record being assembled.
func (w *Writer) FieldsWritten() int { return int(w.state.fieldsWritten) }

// WriteField appends a single field of the current record to buf. Use
// WriteRecord with no fields to terminate the record.
func (w *Writer) WriteField(buf []byte, field []byte) ([]byte, error) {
	if w == nil {
		return buf, errNilWriter
	}
	return w.writeField(buf, field)
}

// WriteFieldString is WriteField for a string.
func (w *Writer) WriteFieldString(buf []byte, field string) ([]byte, error) {
	return w.WriteField(buf, stringBytes(field))
}

// WriteRecord appends fields followed by a record terminator to buf.
//
// Writing no fields terminates the current record. If no field was written
// for it either, the record counts as having zero fields, and it is encoded
// like a record with one empty field ("" followed by the terminator) unless
// the quote style is QuoteNever.
//
// On error the record is abandoned and buf is returned as it was passed in.
func (w *Writer) WriteRecord(buf []byte, fields ...[]byte) ([]byte, error) {
	if w == nil {
		return buf, errNilWriter
	}
	start := len(buf)
	var err error
	for _, field := range fields {
		if buf, err = w.writeField(buf, field); err != nil {
			return buf[:start], err
		}
	}
	if buf, err = w.writeTerminator(buf); err != nil {
		return buf[:start], err
	}
	return buf, nil
}

// WriteRecordStrings is WriteRecord for string fields.
func (w *Writer) WriteRecordStrings(buf []byte, fields []string) ([]byte, error) {
	if w == nil {
		return buf, errNilWriter
	}
	start := len(buf)
	var err error
	for _, field := range fields {
		if buf, err = w.writeField(buf, stringBytes(field)); err != nil {
			return buf[:start], err
		}
	}
	if buf, err = w.writeTerminator(buf); err != nil {
		return buf[:start], err
	}
	return buf, nil
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(buf []byte, records [][]string) ([]byte, error) {
	if w == nil {
		return buf, errNilWriter
	}
	var err error
	for _, record := range records {
		if buf, err = w.WriteRecordStrings(buf, record); err != nil {
			return buf, err
		}
	}
	return buf, nil
}

// Serialize flattens v into a record and appends it to buf.
//
// v is converted with structure.Of. On the first call, if headers are
// enabled and v is a named-field aggregate (or a sequence of them), a header
// row of the field names is written before the record. Later calls never
// write a header.
//
// On error the data record is abandoned and its bytes are removed from the
// returned slice; a header row written by the same call is kept.
func (w *Writer) Serialize(buf []byte, v any) ([]byte, error) {
	return w.SerializeValue(buf, structure.Of(v))
}

// SerializeValue is Serialize for a value already in structure form.
func (w *Writer) SerializeValue(buf []byte, v structure.Value) ([]byte, error) {
	if w == nil {
		return buf, errNilWriter
	}
	if w.state.header == HeaderWrite {
		names, ok := headerNames(v)
		if ok {
			var err error
			if buf, err = w.WriteRecordStrings(buf, names); err != nil {
				return buf, err
			}
			w.state.header = HeaderDidWrite
			w.log.Debug("header row written", zap.Strings("columns", names))
		} else {
			w.state.header = HeaderDidNotWrite
			w.log.Debug("value admits no header row", zap.Stringer("kind", structure.KindOf(v)))
		}
	}

	start := len(buf)
	enc := rowEncoder{w: w, buf: buf}
	if err := v.Accept(&enc); err != nil {
		w.abandonRow()
		return enc.buf[:start], asSerializeError(err)
	}
	out, err := w.writeTerminator(enc.buf)
	if err != nil {
		return out[:start], err
	}
	return out, nil
}

func (w *Writer) writeField(buf []byte, field []byte) ([]byte, error) {
	start := len(buf)
	var err error
	if w.state.fieldsWritten > 0 {
		if buf, err = w.writeDelimiter(buf); err != nil {
			return buf[:start], err
		}
	}
	buf, err = extend(buf, fieldenc.FieldSize(len(field)), func(out []byte) (int, bool) {
		res, nin, nout := w.enc.Field(field, out)
		return nout, res == fieldenc.InputEmpty && nin == len(field)
	})
	if err != nil {
		w.abandonRow()
		return buf[:start], err
	}
	w.state.fieldsWritten++
	return buf, nil
}

func (w *Writer) writeDelimiter(buf []byte) ([]byte, error) {
	buf, err := extend(buf, delimiterReserve, func(out []byte) (int, bool) {
		res, nout := w.enc.Delimiter(out)
		return nout, res == fieldenc.InputEmpty
	})
	if err != nil {
		w.abandonRow()
	}
	return buf, err
}

func (w *Writer) writeTerminator(buf []byte) ([]byte, error) {
	if err := w.checkFieldCount(); err != nil {
		w.abandonRow()
		return buf, err
	}
	buf, err := extend(buf, terminatorReserve, func(out []byte) (int, bool) {
		res, nout := w.enc.Terminator(out)
		return nout, res == fieldenc.InputEmpty
	})
	if err != nil {
		w.abandonRow()
		return buf, err
	}
	w.state.fieldsWritten = 0
	return buf, nil
}

func (w *Writer) checkFieldCount() error {
	if w.state.flexible {
		return nil
	}
	if !w.state.haveFirstCount {
		w.state.firstFieldCount = w.state.fieldsWritten
		w.state.haveFirstCount = true
		return nil
	}
	if w.state.fieldsWritten != w.state.firstFieldCount {
		w.log.Debug("record length mismatch",
			zap.Uint64("expected", w.state.firstFieldCount),
			zap.Uint64("len", w.state.fieldsWritten))
		return &LengthError{Expected: w.state.firstFieldCount, Len: w.state.fieldsWritten}
	}
	return nil
}

// abandonRow drops the record being assembled so the next write starts a
// fresh one.
func (w *Writer) abandonRow() {
	w.state.fieldsWritten = 0
	w.enc.Reset()
}

// extend reserves max bytes at the end of buf, lets fn write into them and
// trims buf to what fn reports as written.
func extend(buf []byte, max int, fn func(out []byte) (int, bool)) ([]byte, error) {
	n := len(buf)
	buf = slices.Grow(buf, max)[:n+max]
	written, ok := fn(buf[n:])
	buf = buf[:n+written]
	if !ok {
		return buf, ErrShortBuffer
	}
	return buf, nil
}

// stringBytes returns a read-only view of s.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
