package csvstream

import (
	"errors"
	"fmt"
)

var (
	// ErrUnequalLengths is matched by errors.Is for every *LengthError.
	ErrUnequalLengths = errors.New("csvstream: unequal record lengths")
	// ErrSerialize is matched by errors.Is for every *SerializeError.
	ErrSerialize = errors.New("csvstream: cannot serialize value")
	// ErrShortBuffer is returned when the field encoder could not write into
	// the space reserved for it. It indicates a bug, not bad input.
	ErrShortBuffer = errors.New("csvstream: field encoder output full")

	errInvalidConfig = errors.New("csvstream: invalid configuration")
)

// LengthError is returned when a completed record has a different number of
// fields than the first record and the writer is not flexible.
type LengthError struct {
	// Expected is the field count of the first record (the header, if one
	// was written).
	Expected uint64
	// Len is the field count of the offending record.
	Len uint64
}

func (e *LengthError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csvstream: found record with %d fields, but the previous record has %d fields", e.Len, e.Expected)
}

// Unwrap returns ErrUnequalLengths.
func (e *LengthError) Unwrap() error {
	return ErrUnequalLengths
}

// SerializeError is returned when a value cannot be flattened into a row.
type SerializeError struct {
	Msg string
	Err error
}

func (e *SerializeError) Error() string {
	if e == nil {
		return ""
	}
	return "csvstream: serialize: " + e.Msg
}

// Unwrap returns ErrSerialize and the underlying cause, if any.
func (e *SerializeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSerialize, e.Err}
	}
	return []error{ErrSerialize}
}

func serializeErrorf(format string, args ...any) *SerializeError {
	return &SerializeError{Msg: fmt.Sprintf(format, args...)}
}
