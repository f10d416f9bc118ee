package csvstream

import (
	"errors"

	"github.com/oleg578/csvstream/structure"
)

// rowEncoder flattens a value depth-first into the fields of one record.
type rowEncoder struct {
	w   *Writer
	buf []byte
}

func (e *rowEncoder) VisitScalar(s structure.Scalar) error {
	var err error
	e.buf, err = e.w.writeField(e.buf, s.Text())
	return err
}

func (e *rowEncoder) VisitSequence(s structure.Sequence) error {
	for elem := range s.All() {
		if err := elem.Accept(e); err != nil {
			return err
		}
	}
	return nil
}

func (e *rowEncoder) VisitAggregate(a structure.Aggregate) error {
	for _, v := range a.All() {
		if err := v.Accept(e); err != nil {
			return err
		}
	}
	return nil
}

func (e *rowEncoder) VisitVariant(v structure.Variant) error {
	switch v.Shape() {
	case structure.VariantUnit:
		return e.VisitScalar(structure.String(v.Name()))
	case structure.VariantNewtype:
		return v.Payload().Accept(e)
	default:
		return serializeErrorf("serializing %s variant %s::%s is not supported", v.Shape(), v.TypeName(), v.Name())
	}
}

func (e *rowEncoder) VisitMap(structure.Map) error {
	return serializeErrorf("serializing maps is not supported")
}

var errNoHeader = errors.New("csvstream: value admits no header")

// headerCollector gathers one column name per scalar leaf. Scalars must be
// reached through a named field; inside a named field, nested sequences and
// aggregates are transparent and every leaf takes the field's name.
type headerCollector struct {
	names   []string
	field   string
	inField bool
}

func (h *headerCollector) VisitScalar(structure.Scalar) error {
	if !h.inField {
		return errNoHeader
	}
	h.names = append(h.names, h.field)
	return nil
}

func (h *headerCollector) VisitSequence(s structure.Sequence) error {
	for elem := range s.All() {
		if err := elem.Accept(h); err != nil {
			return err
		}
	}
	return nil
}

func (h *headerCollector) VisitAggregate(a structure.Aggregate) error {
	if h.inField {
		for _, v := range a.All() {
			if err := v.Accept(h); err != nil {
				return err
			}
		}
		return nil
	}
	for name, v := range a.All() {
		h.field, h.inField = name, true
		err := v.Accept(h)
		h.field, h.inField = "", false
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *headerCollector) VisitVariant(v structure.Variant) error {
	switch v.Shape() {
	case structure.VariantUnit:
		return h.VisitScalar(structure.Scalar{})
	case structure.VariantNewtype:
		return v.Payload().Accept(h)
	default:
		return errNoHeader
	}
}

func (h *headerCollector) VisitMap(structure.Map) error {
	return errNoHeader
}

// headerNames computes the header row for v. It reports false when v is not
// a named-field aggregate or a sequence of them, or has no fields at all.
func headerNames(v structure.Value) ([]string, bool) {
	var h headerCollector
	if err := v.Accept(&h); err != nil || len(h.names) == 0 {
		return nil, false
	}
	return h.names, true
}

// asSerializeError passes writer errors through and wraps anything else
// raised while walking a value.
func asSerializeError(err error) error {
	var serr *SerializeError
	var lerr *LengthError
	switch {
	case errors.As(err, &serr), errors.As(err, &lerr), errors.Is(err, ErrShortBuffer), errors.Is(err, errNilWriter):
		return err
	default:
		return &SerializeError{Msg: err.Error(), Err: err}
	}
}
