package csvstream

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceOf[T any](values ...T) <-chan T {
	ch := make(chan T, len(values))
	for _, v := range values {
		ch <- v
	}
	close(ch)
	return ch
}

func TestStreamRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStream(sourceOf(cityRows...), NewWriter())

	var out []byte
	for row := range s.Rows(ctx) {
		require.NoError(t, row.Err)
		out = append(out, row.Data...)
	}
	assert.Equal(t, "city,country,popcount\nBoston,United States,4628910\nConcord,United States,42695\n", string(out))
}

func TestStreamConfigured(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := NewWriter(WithHeaders(false), WithDelimiter(';'), WithTerminator(CRLF))
	s := NewStream(sourceOf(cityRows...), w)

	var out []byte
	for {
		row, err := s.Recv(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, row...)
	}
	assert.Equal(t, "Boston;United States;4628910\r\nConcord;United States;42695\r\n", string(out))
}

func TestStreamErrorsAreYielded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := sourceOf[any](
		[]string{"a", "b"},
		[]string{"x", "y", "z"},
		[]string{"c", "d"},
	)
	s := NewStream(src, NewWriter())

	var rows []Row
	for row := range s.Rows(ctx) {
		rows = append(rows, row)
	}
	require.Len(t, rows, 3)
	assert.Equal(t, "a,b\n", string(rows[0].Data))
	assert.ErrorIs(t, rows[1].Err, ErrUnequalLengths)
	assert.Equal(t, "c,d\n", string(rows[2].Data))
}

func TestStreamTryRecv(t *testing.T) {
	t.Parallel()

	src := make(chan cityRow)
	s := NewStream(src, NewWriter(WithHeaders(false)))

	row, ready, err := s.TryRecv()
	assert.False(t, ready)
	assert.NoError(t, err)
	assert.Nil(t, row)

	go func() {
		src <- cityRows[0]
		close(src)
	}()

	require.Eventually(t, func() bool {
		row, ready, err = s.TryRecv()
		return ready
	}, time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "Boston,United States,4628910\n", string(row))

	require.Eventually(t, func() bool {
		_, ready, err = s.TryRecv()
		return ready
	}, time.Second, time.Millisecond)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamRecvCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream(make(chan cityRow), NewWriter())

	cancel()
	_, err := s.Recv(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamRowsClosesOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	src := make(chan cityRow)
	rows := NewStream(src, NewWriter()).Rows(ctx)

	src <- cityRows[0]
	first := <-rows
	require.NoError(t, first.Err)

	cancel()
	select {
	case _, ok := <-rows:
		assert.False(t, ok, "expected closed channel after cancel")
	case <-time.After(time.Second):
		t.Fatal("Rows did not close after cancel")
	}
}
