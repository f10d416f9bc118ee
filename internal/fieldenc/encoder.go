// Package fieldenc implements the byte-level CSV field encoder: quoting,
// escaping, delimiters and record terminators written into caller-supplied
// output slices.
package fieldenc

import (
	"bytes"
	"strconv"
)

// QuoteStyle selects when fields are wrapped in quotes.
type QuoteStyle uint8

// Quote styles, in the same order as the public csvstream constants.
const (
	QuoteNecessary QuoteStyle = iota
	QuoteAlways
	QuoteNonNumeric
	QuoteNever
)

// Result reports whether a call consumed all of its input.
type Result uint8

const (
	// InputEmpty means the input was fully written.
	InputEmpty Result = iota
	// OutputFull means out was too small; nothing was written.
	OutputFull
)

// Options configures an Encoder.
type Options struct {
	Delimiter   byte
	Quote       byte
	Escape      byte
	Style       QuoteStyle
	CRLF        bool
	Term        byte // used when CRLF is false
	DoubleQuote bool
}

// Encoder writes encoded CSV fragments. It keeps per-record state so that an
// empty record can be told apart from no record at all.
type Encoder struct {
	opts           Options
	requiresQuotes [256]bool

	recordBytes int
	quotedAny   bool
}

// New builds an Encoder for opts.
func New(opts Options) *Encoder {
	e := &Encoder{opts: opts}
	e.requiresQuotes[opts.Delimiter] = true
	e.requiresQuotes[opts.Quote] = true
	if !opts.DoubleQuote {
		// the escape byte only matters when it escapes quotes
		e.requiresQuotes[opts.Escape] = true
	}
	if opts.CRLF || opts.Term == '\n' || opts.Term == '\r' {
		e.requiresQuotes['\r'] = true
		e.requiresQuotes['\n'] = true
	} else {
		e.requiresQuotes[opts.Term] = true
	}
	return e
}

// Reset clears the per-record state.
func (e *Encoder) Reset() {
	e.recordBytes = 0
	e.quotedAny = false
}

// FieldSize is the worst-case output size for an input of n bytes.
func FieldSize(n int) int { return 2*n + 2 }

// Field encodes one field into out and reports bytes consumed and produced.
func (e *Encoder) Field(in, out []byte) (Result, int, int) {
	quoting := e.shouldQuote(in)
	if !quoting {
		if len(out) < len(in) {
			return OutputFull, 0, 0
		}
		n := copy(out, in)
		e.recordBytes += len(in)
		return InputEmpty, len(in), n
	}
	if len(out) < e.quotedLen(in) {
		return OutputFull, 0, 0
	}

	quote := e.opts.Quote
	nout := 0
	out[nout] = quote
	nout++

	start := 0
	for i := 0; i < len(in); i++ {
		if in[i] != quote {
			continue
		}
		nout += copy(out[nout:], in[start:i])
		if e.opts.DoubleQuote {
			out[nout] = quote
		} else {
			out[nout] = e.opts.Escape
		}
		out[nout+1] = quote
		nout += 2
		start = i + 1
	}
	nout += copy(out[nout:], in[start:])
	out[nout] = quote
	nout++

	e.recordBytes += len(in)
	e.quotedAny = true
	return InputEmpty, len(in), nout
}

// Delimiter writes the field delimiter.
func (e *Encoder) Delimiter(out []byte) (Result, int) {
	if len(out) < 1 {
		return OutputFull, 0
	}
	out[0] = e.opts.Delimiter
	e.recordBytes++
	return InputEmpty, 1
}

// Terminator writes the record terminator and resets the per-record state.
// A record without any content is written as a single quoted empty field so
// it survives a round trip, except under QuoteNever.
func (e *Encoder) Terminator(out []byte) (Result, int) {
	need := 1
	if e.opts.CRLF {
		need = 2
	}
	emptyRecord := e.recordBytes == 0 && !e.quotedAny && e.opts.Style != QuoteNever
	if emptyRecord {
		need += 2
	}
	if len(out) < need {
		return OutputFull, 0
	}

	nout := 0
	if emptyRecord {
		out[0], out[1] = e.opts.Quote, e.opts.Quote
		nout = 2
	}
	if e.opts.CRLF {
		out[nout], out[nout+1] = '\r', '\n'
		nout += 2
	} else {
		out[nout] = e.opts.Term
		nout++
	}
	e.Reset()
	return InputEmpty, nout
}

func (e *Encoder) shouldQuote(in []byte) bool {
	switch e.opts.Style {
	case QuoteAlways:
		return true
	case QuoteNever:
		return false
	case QuoteNonNumeric:
		return e.needsQuotes(in) || !isNumeric(in)
	default:
		return e.needsQuotes(in)
	}
}

func (e *Encoder) needsQuotes(in []byte) bool {
	for _, b := range in {
		if e.requiresQuotes[b] {
			return true
		}
	}
	return false
}

func (e *Encoder) quotedLen(in []byte) int {
	n := len(in) + 2
	for _, b := range in {
		if b == e.opts.Quote {
			n++
		}
	}
	return n
}

// isNumeric reports whether in is a plain decimal integer or float. Go
// literal extensions (hex floats, digit separators) do not count.
func isNumeric(in []byte) bool {
	if len(in) == 0 || bytes.ContainsAny(in, "xXpP_") {
		return false
	}
	s := string(in)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseUint(s, 10, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
