package record

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossval/codec"
	"github.com/hupe1980/crossval/metadata"
)

func TestRecordAccessors(t *testing.T) {
	r := New([]float32{1, 2}).Subject("s1").Partition(2).Build()
	assert.Equal(t, "s1", r.Subject())
	assert.Equal(t, 2, r.Partition())

	empty := Record{}
	assert.Equal(t, 0, empty.Partition())
	assert.Equal(t, "", empty.Subject())

	clone := r.Clone()
	clone.Vector[0] = 42
	clone.Metadata[KeySubject] = metadata.String("other")
	assert.Equal(t, float32(1), r.Vector[0])
	assert.Equal(t, "s1", r.Subject())
}

func TestDatasetFind(t *testing.T) {
	ds := Dataset{
		New(nil).Subject("a").Build(),
		New(nil).Subject("b").Build(),
		New(nil).Subject("a").Build(),
		New(nil).With(KeySubject, metadata.Int(7)).Build(),
	}

	assert.Equal(t, []int{0, 2}, ds.Find(KeySubject, "a"))
	assert.Equal(t, []int{1}, ds.Find(KeySubject, "b"))
	assert.Equal(t, []int{3}, ds.Find(KeySubject, "7"))
	assert.Empty(t, ds.Find(KeySubject, "c"))
}

func TestDatasetSelect(t *testing.T) {
	ds := Dataset{
		New(nil).With("Gender", metadata.String("M")).Build(),
		New(nil).With("Gender", metadata.String("F")).Build(),
	}
	fs := metadata.NewFilterSet(metadata.Filter{Key: "Gender", Operator: metadata.OpEqual, Value: metadata.String("F")})

	got := ds.Select(fs)
	require.Len(t, got, 1)
	assert.Equal(t, "F", got[0].Metadata.GetString("Gender", ""))
	assert.Len(t, ds.Select(nil), 2)
}

func TestDatasetSize(t *testing.T) {
	ds := Dataset{New([]float32{1, 2, 3}).Build(), New([]float32{4, 5, 6}).Build()}
	assert.Equal(t, 3, ds.Dimension())
	assert.Equal(t, int64(24), ds.SizeBytes())
	assert.Equal(t, 0, Dataset{}.Dimension())

	clone := ds.Clone()
	clone[0] = Record{}
	assert.Len(t, ds[0].Vector, 3)
}

func TestJSONL(t *testing.T) {
	in := Dataset{
		New([]float32{1, 2}).Subject("s1").Partition(0).With("Age", metadata.Pt(20, 40)).Build(),
		New([]float32{3, 4}).Subject("s2").Partition(1).With("Gender", metadata.String("F")).Build(),
	}

	for _, name := range []string{"json", "go-json"} {
		t.Run(name, func(t *testing.T) {
			c, _ := codec.ByName(name)

			var buf bytes.Buffer
			require.NoError(t, WriteJSONL(&buf, c, in))

			out, err := ReadJSONL(&buf, c, Schema)
			require.NoError(t, err)
			require.Len(t, out, 2)

			assert.Equal(t, in[0].Vector, out[0].Vector)
			assert.Equal(t, "s1", out[0].Subject())
			assert.Equal(t, 1, out[1].Partition())
			p, ok := out[0].Metadata.GetPoint("Age")
			require.True(t, ok)
			assert.Equal(t, metadata.Point{X: 20, Y: 40}, p)
			assert.Equal(t, "F", out[1].Metadata.GetString("Gender", ""))
		})
	}
}

func TestReadJSONLErrors(t *testing.T) {
	_, err := ReadJSONL(strings.NewReader("{\"metadata\":{\"Partition\":\"x\"}}\n"), nil, Schema)
	assert.ErrorContains(t, err, "line 1")

	_, err = ReadJSONL(strings.NewReader("\n\nnot json\n"), nil, nil)
	assert.ErrorContains(t, err, "line 3")

	ds, err := ReadJSONL(strings.NewReader("\n{\"metadata\":{\"Partition\":\"x\"}}\n"), nil, nil)
	require.NoError(t, err)
	assert.Len(t, ds, 1)
}
