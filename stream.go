package csvstream

import (
	"context"
	"io"

	"go.uber.org/zap"
)

// Row is one encoded record delivered by a Stream. Exactly one of Data and
// Err is meaningful, except that Data may carry a header row next to an Err.
type Row struct {
	Data []byte
	Err  error
}

// Stream encodes values as they arrive on a channel.
//
// The Stream does no buffering of its own: a receive waits for the source,
// and a closed source ends the stream. Encoding failures are delivered as
// errors for the affected element and the stream continues with the next
// one. Cancellation belongs to the caller's context and the source.
type Stream[T any] struct {
	src <-chan T
	w   *Writer
}

// NewStream returns a Stream encoding values from src with w.
func NewStream[T any](src <-chan T, w *Writer) *Stream[T] {
	return &Stream[T]{src: src, w: w}
}

// Writer returns the Writer shared by the stream.
func (s *Stream[T]) Writer() *Writer { return s.w }

// Recv waits for the next value and returns its encoded record. It returns
// io.EOF once src is closed, or ctx.Err() if ctx ends first.
func (s *Stream[T]) Recv(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case v, ok := <-s.src:
		if !ok {
			return nil, io.EOF
		}
		return s.encode(v)
	}
}

// TryRecv polls the source without blocking. ready is false when no value
// is available yet; a closed source reports ready with io.EOF.
func (s *Stream[T]) TryRecv() (row []byte, ready bool, err error) {
	select {
	case v, ok := <-s.src:
		if !ok {
			return nil, true, io.EOF
		}
		row, err = s.encode(v)
		return row, true, err
	default:
		return nil, false, nil
	}
}

// Rows encodes the source in a goroutine and delivers the results on the
// returned channel, which is closed when src is closed or ctx ends.
func (s *Stream[T]) Rows(ctx context.Context) <-chan Row {
	out := make(chan Row)
	go func() {
		defer close(out)
		for {
			data, err := s.Recv(ctx)
			if err == io.EOF || (err != nil && ctx.Err() != nil) {
				return
			}
			select {
			case out <- Row{Data: data, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *Stream[T]) encode(v T) ([]byte, error) {
	row, err := s.w.encode(v)
	if err != nil && s.w != nil {
		s.w.log.Debug("stream element failed", zap.Error(err))
	}
	return row, err
}
