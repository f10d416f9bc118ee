package csvstream

import (
	"bytes"
	"io"
	"iter"
)

// Rows returns a sequence yielding one encoded record per element of seq.
// Each record is serialized with w into a freshly allocated buffer. A failed
// element yields its error and iteration carries on with the next element;
// the bytes yielded alongside an error hold at most a header row.
//
//	w := csvstream.NewWriter()
//	for row, err := range csvstream.Rows(slices.Values(people), w) {
//	    if err != nil {
//	        return err
//	    }
//	    out.Write(row)
//	}
//
// The first element may yield a header row together with its record.
func Rows[T any](seq iter.Seq[T], w *Writer) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for v := range seq {
			if !yield(w.encode(v)) {
				return
			}
		}
	}
}

// Iter pulls values from a sequence and encodes them one at a time.
type Iter[T any] struct {
	next func() (T, bool)
	stop func()
	w    *Writer
	done bool
}

// NewIter returns an Iter over seq sharing w's header and length state.
// Call Stop when abandoning the Iter before it is exhausted.
func NewIter[T any](seq iter.Seq[T], w *Writer) *Iter[T] {
	next, stop := iter.Pull(seq)
	return &Iter[T]{next: next, stop: stop, w: w}
}

// Next encodes the next element. It returns io.EOF once the sequence is
// exhausted, and keeps returning io.EOF afterwards. An encoding error
// affects only the current element.
func (it *Iter[T]) Next() ([]byte, error) {
	if it.done {
		return nil, io.EOF
	}
	v, ok := it.next()
	if !ok {
		it.Stop()
		return nil, io.EOF
	}
	return it.w.encode(v)
}

// Stop releases the underlying sequence. Next returns io.EOF afterwards.
func (it *Iter[T]) Stop() {
	if it.done {
		return
	}
	it.done = true
	it.stop()
}

// Writer returns the Writer shared by the iterator.
func (it *Iter[T]) Writer() *Writer { return it.w }

// encode serializes v into the writer's scratch buffer and returns an exact
// copy, so rows handed to callers never pin a Capacity-sized array. On error
// the copy holds only what was committed before the failure, which is at
// most a header row.
func (w *Writer) encode(v any) ([]byte, error) {
	if w == nil {
		return nil, errNilWriter
	}
	if w.scratch == nil {
		w.scratch = make([]byte, 0, w.cfg.Capacity)
	}
	buf, err := w.Serialize(w.scratch[:0], v)
	if cap(buf) <= maxScratchGrowth*w.cfg.Capacity {
		w.scratch = buf[:0]
	}
	return bytes.Clone(buf), err
}
