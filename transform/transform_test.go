package transform

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossval/record"
)

func vectors(vs ...[]float32) record.Dataset {
	ds := make(record.Dataset, len(vs))
	for i, v := range vs {
		ds[i] = record.New(v).Build()
	}
	return ds
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("Identity", func() Transform { return &Identity{} }))

	err := r.Register("Identity", func() Transform { return &Identity{} })
	assert.ErrorIs(t, err, ErrDuplicateTransform)
	assert.Error(t, r.Register("", func() Transform { return &Identity{} }))
	assert.Error(t, r.Register("Nil", nil))

	tr, err := r.Make("Identity")
	require.NoError(t, err)
	assert.IsType(t, &Identity{}, tr)

	_, err = r.Make("PCA")
	assert.ErrorIs(t, err, ErrUnknownTransform)

	a, _ := r.Make("Identity")
	b, _ := r.Make("Identity")
	assert.NotSame(t, a, b)
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"Center", "Identity", "Scale"}, Default.Names())

	tr, err := Make("Center")
	require.NoError(t, err)
	assert.IsType(t, &Center{}, tr)
}

func TestIdentity(t *testing.T) {
	id := &Identity{}
	require.NoError(t, id.Train(context.Background(), nil))

	src := record.New([]float32{1, 2}).Subject("s").Build()
	var dst record.Record
	require.NoError(t, id.Project(src, &dst))
	assert.Equal(t, src.Vector, dst.Vector)
	assert.Equal(t, "s", dst.Subject())

	dst.Vector[0] = 9
	assert.Equal(t, float32(1), src.Vector[0])
}

func TestCenter(t *testing.T) {
	c := &Center{}
	require.NoError(t, c.Train(context.Background(), vectors([]float32{1, 2}, []float32{3, 6})))
	assert.Equal(t, []float32{2, 4}, c.Mean)

	var dst record.Record
	require.NoError(t, c.Project(record.New([]float32{2, 5}).Build(), &dst))
	assert.Equal(t, []float32{0, 1}, dst.Vector)

	assert.Error(t, c.Project(record.New([]float32{1}).Build(), &dst))
}

func TestScale(t *testing.T) {
	s := &Scale{}
	require.NoError(t, s.Train(context.Background(), vectors([]float32{1, 5}, []float32{3, 5})))
	assert.Equal(t, []float32{1, 0}, s.StdDev)

	var dst record.Record
	require.NoError(t, s.Project(record.New([]float32{4, 7}).Build(), &dst))
	assert.Equal(t, []float32{4, 7}, dst.Vector)
}

func TestTrainErrors(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, (&Center{}).Train(ctx, nil), ErrInsufficientData)
	assert.ErrorIs(t, (&Scale{}).Train(ctx, record.Dataset{}), ErrInsufficientData)
	assert.ErrorIs(t, (&Center{}).Train(ctx, vectors([]float32{1, 2}, []float32{1})), ErrInsufficientData)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, (&Center{}).Train(canceled, vectors([]float32{1})), context.Canceled)
}

func TestStoreLoad(t *testing.T) {
	ctx := context.Background()
	data := vectors([]float32{1, 2, 3}, []float32{5, 4, 3})
	probe := record.New([]float32{2, 2, 2}).Build()

	for name, pair := range map[string][2]Transform{
		"Identity": {&Identity{}, &Identity{}},
		"Center":   {&Center{}, &Center{}},
		"Scale":    {&Scale{}, &Scale{}},
	} {
		t.Run(name, func(t *testing.T) {
			orig, restored := pair[0], pair[1]
			require.NoError(t, orig.Train(ctx, data))

			var buf bytes.Buffer
			require.NoError(t, orig.Store(&buf))
			// Trailing bytes belong to the next model and must not be consumed.
			buf.WriteString("next")

			require.NoError(t, restored.Load(&buf))
			assert.Equal(t, "next", buf.String())

			var want, got record.Record
			require.NoError(t, orig.Project(probe, &want))
			require.NoError(t, restored.Project(probe, &got))
			assert.Equal(t, want.Vector, got.Vector)
		})
	}
}

func TestLoadTruncated(t *testing.T) {
	c := &Center{Mean: []float32{1, 2, 3}}
	var buf bytes.Buffer
	require.NoError(t, c.Store(&buf))

	data := buf.Bytes()
	err := (&Center{}).Load(bytes.NewReader(data[:len(data)-2]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	err = (&Center{}).Load(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)

	huge := []byte{0xff, 0xff, 0xff, 0xff}
	assert.Error(t, (&Scale{}).Load(bytes.NewReader(huge)))
}
