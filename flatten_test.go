package csvstream

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oleg578/csvstream/structure"
)

type point struct {
	X int `csv:"x"`
	Y int `csv:"y"`
}

type location struct {
	Name string `csv:"name"`
	Pos  point  `csv:"pos"`
}

type tagged struct {
	ID   int      `csv:"id"`
	Tags []string `csv:"tags"`
}

type audit struct {
	CreatedBy string `csv:"created_by"`
}

type document struct {
	Title  string `csv:"title"`
	hidden string
	Skip   string `csv:"-"`
	audit
	Note *string `csv:"note"`
	Seen time.Time
}

type status int

func (s status) StructureValue() structure.Value {
	if s == 0 {
		return structure.UnitVariant("Status", "Inactive")
	}
	return structure.NewtypeVariant("Status", "Active", structure.Int(int64(s)))
}

func serializeOne(t *testing.T, w *Writer, v any) string {
	t.Helper()
	buf, err := w.Serialize(nil, v)
	require.NoError(t, err)
	return string(buf)
}

func TestSerializeNestedAggregateIsTransparent(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	got := serializeOne(t, w, location{Name: "origin", Pos: point{X: 1, Y: 2}})
	assert.Equal(t, "name,pos,pos\norigin,1,2\n", got)
	assert.Equal(t, HeaderDidWrite, w.HeaderState())
}

func TestSerializeSequenceInsideNamedField(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	got := serializeOne(t, w, tagged{ID: 7, Tags: []string{"red", "blue"}})
	assert.Equal(t, "id,tags,tags\n7,red,blue\n", got)

	// the header fixed the width: a different number of tags is a length error
	_, err := w.Serialize(nil, tagged{ID: 8, Tags: []string{"green"}})
	var lerr *LengthError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, uint64(3), lerr.Expected)
	assert.Equal(t, uint64(2), lerr.Len)
}

func TestSerializeSequenceOfAggregates(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	got := serializeOne(t, w, []any{point{X: 1, Y: 2}, tagged{ID: 3, Tags: []string{"t"}}})
	assert.Equal(t, "x,y,id,tags\n1,2,3,t\n", got)
}

func TestSerializeMixedTopLevelWritesNoHeader(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	got := serializeOne(t, w, []any{point{X: 1, Y: 2}, 5})
	assert.Equal(t, "1,2,5\n", got)
	assert.Equal(t, HeaderDidNotWrite, w.HeaderState())

	// header handling is over after the first call
	got = serializeOne(t, w, []any{point{X: 3, Y: 4}, 6})
	assert.Equal(t, "3,4,6\n", got)
}

func TestSerializeHeaderOnlyOnce(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	assert.Equal(t, "x,y\n1,2\n", serializeOne(t, w, point{X: 1, Y: 2}))
	assert.Equal(t, "3,4\n", serializeOne(t, w, point{X: 3, Y: 4}))
	assert.Equal(t, HeaderDidWrite, w.HeaderState())
}

func TestSerializeStructTags(t *testing.T) {
	t.Parallel()

	note := "checked"
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	w := NewWriter()

	got := serializeOne(t, w, document{
		Title:  "report",
		hidden: "nope",
		Skip:   "nope",
		audit:  audit{CreatedBy: "ops"},
		Note:   &note,
		Seen:   seen,
	})
	assert.Equal(t, "title,created_by,note,Seen\nreport,ops,checked,2024-05-01T12:00:00Z\n", got)

	got = serializeOne(t, w, document{Title: "draft"})
	assert.Equal(t, "draft,,,0001-01-01T00:00:00Z\n", got)
}

func TestSerializeVariants(t *testing.T) {
	t.Parallel()

	type account struct {
		Name   string `csv:"name"`
		Status status `csv:"status"`
	}

	w := NewWriter()
	assert.Equal(t, "name,status\nann,Inactive\n", serializeOne(t, w, account{Name: "ann"}))
	assert.Equal(t, "bob,3\n", serializeOne(t, w, account{Name: "bob", Status: 3}))
}

func TestSerializeNewtypeWithoutPayload(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	got := serializeOne(t, w, structure.Record(
		structure.Named("id", structure.Int(1)),
		structure.Named("opt", structure.NewtypeVariant("Opt", "Some", nil)),
	))
	assert.Equal(t, "id,opt\n1,\n", got)
}

func TestSerializeRejectedShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{name: "map", value: map[string]int{"a": 1}},
		{name: "mapInField", value: struct {
			M map[string]int `csv:"m"`
		}{M: map[string]int{"a": 1}}},
		{name: "tupleVariant", value: structure.TupleVariant("Shape", "Line", structure.Int(1), structure.Int(2))},
		{name: "structVariant", value: structure.Record(
			structure.Named("shape", structure.StructVariant("Shape", "Circle", structure.Named("r", structure.Float(1)))),
		)},
		{name: "unsupportedType", value: struct {
			C chan int `csv:"c"`
		}{C: make(chan int)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := NewWriter()
			buf, err := w.Serialize([]byte("keep"), tc.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSerialize)
			assert.Equal(t, "keep", string(buf))
			assert.Equal(t, HeaderDidNotWrite, w.HeaderState())
			assert.Equal(t, 0, w.FieldsWritten())
		})
	}
}

func TestSerializeUnsupportedTypeKeepsCause(t *testing.T) {
	t.Parallel()

	w := NewWriter(WithHeaders(false))
	_, err := w.Serialize(nil, []any{1, func() {}})

	var uerr *structure.UnsupportedTypeError
	require.ErrorAs(t, err, &uerr)
	var serr *SerializeError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "unsupported type func()")
}

func TestSerializeRecoversAfterError(t *testing.T) {
	t.Parallel()

	w := NewWriter(WithHeaders(false))
	buf, err := w.Serialize(nil, []any{"a", map[int]int{1: 1}})
	require.ErrorIs(t, err, ErrSerialize)
	assert.Empty(t, buf)

	buf, err = w.Serialize(buf, []string{"b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "b,c\n", string(buf))
}

func TestSerializeEmptyAggregate(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	got := serializeOne(t, w, struct{}{})
	assert.Equal(t, "\"\"\n", got)
	assert.Equal(t, HeaderDidNotWrite, w.HeaderState())
}

func TestSerializeOptionalValues(t *testing.T) {
	t.Parallel()

	type opt struct {
		A *int    `csv:"a"`
		B any     `csv:"b"`
		C []byte  `csv:"c"`
		D *string `csv:"d"`
	}
	n := 5
	w := NewWriter(WithQuoteStyle(QuoteNonNumeric))
	got := serializeOne(t, w, opt{A: &n, C: []byte("raw")})
	assert.Equal(t, "\"a\",\"b\",\"c\",\"d\"\n5,\"\",\"raw\",\"\"\n", got)
}

func TestSerializeHeaderAgainstExistingBaseline(t *testing.T) {
	t.Parallel()

	w := NewWriter()
	buf, err := w.WriteRecordStrings(nil, []string{"only"})
	require.NoError(t, err)

	buf, err = w.Serialize(buf, point{X: 1, Y: 2})
	require.True(t, errors.Is(err, ErrUnequalLengths))
	assert.Equal(t, "only\n", string(buf))
	assert.Equal(t, HeaderWrite, w.HeaderState())
}

func TestHeaderNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value structure.Value
		want  []string
		ok    bool
	}{
		{name: "scalar", value: structure.String("a"), ok: false},
		{name: "sequenceOfScalars", value: structure.Seq(structure.Int(1), structure.Int(2)), ok: false},
		{name: "record", value: structure.Record(
			structure.Named("a", structure.Int(1)),
			structure.Named("b", structure.None()),
		), want: []string{"a", "b"}, ok: true},
		{name: "recordThenScalar", value: structure.Seq(
			structure.Record(structure.Named("a", structure.Int(1))),
			structure.Bool(true),
		), ok: false},
		{name: "unitVariantTopLevel", value: structure.UnitVariant("T", "V"), ok: false},
		{name: "newtypeVariantOfRecord", value: structure.NewtypeVariant("T", "V",
			structure.Record(structure.Named("inner", structure.Char('x'))),
		), want: []string{"inner"}, ok: true},
		{name: "emptyRecord", value: structure.Record(), ok: false},
		{name: "map", value: structure.MapOf(), ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			names, ok := headerNames(tc.value)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, names)
		})
	}
}
