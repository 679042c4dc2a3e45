package metadata

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		metadata Document
		want     bool
	}{
		{
			name:     "OpEqual string match",
			filter:   Filter{Key: "Gender", Operator: OpEqual, Value: String("M")},
			metadata: Document{"Gender": String("M")},
			want:     true,
		},
		{
			name:     "OpEqual string no match",
			filter:   Filter{Key: "Gender", Operator: OpEqual, Value: String("M")},
			metadata: Document{"Gender": String("F")},
			want:     false,
		},
		{
			name:     "OpEqual int float",
			filter:   Filter{Key: "Partition", Operator: OpEqual, Value: Float(2)},
			metadata: Document{"Partition": Int(2)},
			want:     true,
		},
		{
			name:     "OpGreaterEqual equal",
			filter:   Filter{Key: "Age", Operator: OpGreaterEqual, Value: Int(18)},
			metadata: Document{"Age": Int(18)},
			want:     true,
		},
		{
			name:     "OpLessThan",
			filter:   Filter{Key: "Age", Operator: OpLessThan, Value: Int(18)},
			metadata: Document{"Age": Int(30)},
			want:     false,
		},
		{
			name:     "OpIn string list",
			filter:   Filter{Key: "Race", Operator: OpIn, Value: Strings([]string{"A", "B"})},
			metadata: Document{"Race": String("B")},
			want:     true,
		},
		{
			name:     "OpIn missing key",
			filter:   Filter{Key: "Race", Operator: OpIn, Value: Strings([]string{"A", "B"})},
			metadata: Document{},
			want:     false,
		},
		{
			name:     "OpContains",
			filter:   Filter{Key: "File", Operator: OpContains, Value: String("probe")},
			metadata: Document{"File": String("probe_001.jpg")},
			want:     true,
		},
		{
			name:     "OpEqual point",
			filter:   Filter{Key: "Age", Operator: OpEqual, Value: Pt(20, 40)},
			metadata: Document{"Age": Pt(20, 40)},
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.metadata))
		})
	}
}

func TestFilterSetMatches(t *testing.T) {
	fs := NewFilterSet(
		Filter{Key: "Gender", Operator: OpIn, Value: Strings([]string{"M"})},
		Filter{Key: "Age", Operator: OpGreaterThan, Value: Int(20)},
	)

	assert.True(t, fs.Matches(Document{"Gender": String("M"), "Age": Int(30)}))
	assert.False(t, fs.Matches(Document{"Gender": String("M"), "Age": Int(10)}))
	assert.False(t, fs.Matches(Document{"Age": Int(30)}))
}

func TestParseFilter(t *testing.T) {
	doc := Document{
		"Age":    Float(30),
		"Gender": String("M"),
		"File":   String("probe 01.png"),
		"Adult":  Bool(true),
	}

	tests := []struct {
		expr  string
		want  Filter
		match bool
	}{
		{expr: "Age eq 30", want: Filter{Key: "Age", Operator: OpEqual, Value: Int(30)}, match: true},
		{expr: "Age ne 30", want: Filter{Key: "Age", Operator: OpNotEqual, Value: Int(30)}, match: false},
		{expr: "Age gt 29.5", want: Filter{Key: "Age", Operator: OpGreaterThan, Value: Float(29.5)}, match: true},
		{expr: "Age gte 30", want: Filter{Key: "Age", Operator: OpGreaterEqual, Value: Int(30)}, match: true},
		{expr: "Age lt 30", want: Filter{Key: "Age", Operator: OpLessThan, Value: Int(30)}, match: false},
		{expr: "Age lte 30", want: Filter{Key: "Age", Operator: OpLessEqual, Value: Int(30)}, match: true},
		{expr: "Gender in F, M", want: Filter{Key: "Gender", Operator: OpIn, Value: Strings([]string{"F", "M"})}, match: true},
		{expr: "File contains 01.png", want: Filter{Key: "File", Operator: OpContains, Value: String("01.png")}, match: true},
		{expr: "File contains probe 01", want: Filter{Key: "File", Operator: OpContains, Value: String("probe 01")}, match: true},
		{expr: "Adult eq true", want: Filter{Key: "Adult", Operator: OpEqual, Value: Bool(true)}, match: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.match, f.Matches(doc))
		})
	}
}

func TestParseFilterErrors(t *testing.T) {
	for _, expr := range []string{"", "Age", "Age gte", "Age between 1"} {
		_, err := ParseFilter(expr)
		assert.ErrorIs(t, err, ErrInvalidFilter, expr)
	}

	_, err := NewFilter("", OpEqual, "1")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestDocumentGetters(t *testing.T) {
	doc := Document{
		"Subject":   String("s1"),
		"Partition": Int(3),
		"Weight":    Float(2.5),
		"Probe":     Bool(true),
		"Numeric":   String(" 7 "),
		"Age":       Pt(20, 40),
		"Range":     String("(1, 5)"),
		"Pair":      Array([]Value{Int(3), Float(9)}),
		"Nothing":   Null(),
	}

	t.Run("GetString", func(t *testing.T) {
		assert.Equal(t, "s1", doc.GetString("Subject", ""))
		assert.Equal(t, "3", doc.GetString("Partition", ""))
		assert.Equal(t, "2.5", doc.GetString("Weight", ""))
		assert.Equal(t, "true", doc.GetString("Probe", ""))
		assert.Equal(t, "", doc.GetString("Age", ""))
		assert.Equal(t, "x", doc.GetString("Missing", "x"))
		assert.Equal(t, "x", doc.GetString("Nothing", "x"))
	})

	t.Run("GetInt", func(t *testing.T) {
		assert.Equal(t, 3, doc.GetInt("Partition", 0))
		assert.Equal(t, 2, doc.GetInt("Weight", 0))
		assert.Equal(t, 7, doc.GetInt("Numeric", 0))
		assert.Equal(t, 1, doc.GetInt("Probe", 0))
		assert.Equal(t, -1, doc.GetInt("Subject", -1))
		assert.Equal(t, 0, doc.GetInt("Missing", 0))
	})

	t.Run("GetBool", func(t *testing.T) {
		assert.True(t, doc.GetBool("Probe", false))
		assert.True(t, doc.GetBool("Partition", false))
		assert.False(t, doc.GetBool("Missing", false))
	})

	t.Run("GetPoint", func(t *testing.T) {
		p, ok := doc.GetPoint("Age")
		require.True(t, ok)
		assert.Equal(t, Point{X: 20, Y: 40}, p)

		p, ok = doc.GetPoint("Range")
		require.True(t, ok)
		assert.Equal(t, Point{X: 1, Y: 5}, p)

		p, ok = doc.GetPoint("Pair")
		require.True(t, ok)
		assert.Equal(t, Point{X: 3, Y: 9}, p)

		_, ok = doc.GetPoint("Subject")
		assert.False(t, ok)
		_, ok = doc.GetPoint("Missing")
		assert.False(t, ok)
	})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, doc.Has("Subject"))
		assert.False(t, doc.Has("Nothing"))
		assert.False(t, doc.Has("Missing"))
	})
}

func TestDocumentClone(t *testing.T) {
	doc := Document{
		"Age":  Pt(1, 2),
		"Tags": Strings([]string{"a", "b"}),
	}
	clone := doc.Clone()

	clone["Age"].P.X = 99
	clone["Tags"].A[0] = String("z")

	p, _ := doc.GetPoint("Age")
	assert.Equal(t, float64(1), p.X)
	assert.Equal(t, "a", doc["Tags"].A[0].StringValue())
	assert.Nil(t, Document(nil).Clone())
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    Point
		wantErr bool
	}{
		{in: "(20, 40)", want: Point{X: 20, Y: 40}},
		{in: "(20,40)", want: Point{X: 20, Y: 40}},
		{in: "  ( -1.5 , 2 ) ", want: Point{X: -1.5, Y: 2}},
		{in: "20, 40", wantErr: true},
		{in: "(20)", wantErr: true},
		{in: "(a, 4)", wantErr: true},
		{in: "(4, b)", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePoint(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPoint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "(20, 40)", Point{X: 20, Y: 40}.String())
	lo, hi := Point{X: 20.9, Y: 40.2}.Range()
	assert.Equal(t, 20, lo)
	assert.Equal(t, 40, hi)
}

func TestPositionSet(t *testing.T) {
	s := NewPositionSet(5, 1, 5, 3)
	s.Add(1)
	s.Add(-4)

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(-4))
	assert.Equal(t, []int{1, 3, 5}, s.ToSlice())
	assert.Equal(t, []int{5, 3, 1}, slices.Collect(s.Descending()))

	clone := s.Clone()
	clone.Add(9)
	assert.Equal(t, 3, s.Len())
	assert.False(t, NewPositionSet().Len() > 0)
	assert.True(t, NewPositionSet().IsEmpty())
}

func TestFromAny(t *testing.T) {
	doc, err := DocumentFromAny(map[string]any{
		"Subject":   "s1",
		"Partition": float64(2),
		"Age":       map[string]any{"x": float64(20), "y": float64(40)},
		"Tags":      []any{"a", "b"},
	})
	require.NoError(t, err)

	assert.Equal(t, "s1", doc.GetString("Subject", ""))
	assert.Equal(t, 2, doc.GetInt("Partition", 0))
	p, ok := doc.GetPoint("Age")
	require.True(t, ok)
	assert.Equal(t, Point{X: 20, Y: 40}, p)
	assert.Equal(t, KindArray, doc["Tags"].Kind)

	_, err = FromAny(map[string]any{"a": 1.0})
	assert.Error(t, err)
	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	schema := Schema{"Partition": FieldTypeInt, "Age": FieldTypePoint}

	assert.NoError(t, schema.Validate(Document{"Partition": Int(1), "Age": Pt(1, 2), "Other": String("x")}))
	assert.Error(t, schema.Validate(Document{"Partition": String("1")}))
	assert.Error(t, schema.Validate(Document{"Age": Int(3)}))

	assert.NoError(t, schema.ValidateMap(map[string]any{"Partition": float64(2)}))
	assert.Error(t, schema.ValidateMap(map[string]any{"Partition": 2.5}))
	assert.NoError(t, schema.ValidateMap(map[string]any{"Age": map[string]any{"x": 1.0, "y": 2.0}}))
	assert.Equal(t, "Point", FieldTypePoint.String())
}

func TestValueJSON(t *testing.T) {
	for _, v := range []Value{String("abc"), Int(4), Pt(1, 2), Strings([]string{"x"})} {
		data, err := v.MarshalJSON()
		require.NoError(t, err)

		var got Value
		require.NoError(t, got.UnmarshalJSON(data))
		assert.Equal(t, v.Key(), got.Key())
	}
}

func TestToMapRoundTrip(t *testing.T) {
	doc := Document{
		"Subject": String("s1"),
		"Age":     Pt(20, 40),
		"Tags":    Strings([]string{"a"}),
		"Probe":   Bool(true),
	}

	back, err := DocumentFromAny(doc.ToMap())
	require.NoError(t, err)
	for k, v := range doc {
		assert.Equal(t, v.Key(), back[k].Key(), k)
	}
	assert.Nil(t, Null().Interface())
}
