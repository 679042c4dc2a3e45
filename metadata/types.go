package metadata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unique"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid represents an invalid kind.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindInt represents an integer value.
	KindInt
	// KindFloat represents a float value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindBool represents a boolean value.
	KindBool
	// KindArray represents an array value.
	KindArray
	// KindPoint represents a 2D point value.
	KindPoint
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindArray:
		return "Array"
	case KindPoint:
		return "Point"
	default:
		return "Invalid"
	}
}

// Value is a small typed value used for record attributes and filters.
//
// The representation is designed to make filtering fast and predictable:
// no reflection and no fmt-based stringification.
type Value struct {
	Kind Kind                  `json:"k"`
	I64  int64                 `json:"i,omitempty"`
	F64  float64               `json:"f,omitempty"`
	s    unique.Handle[string] `json:"-"` // Private interned string
	B    bool                  `json:"b,omitempty"`
	A    []Value               `json:"a,omitempty"`
	P    *Point                `json:"p,omitempty"`
}

// StringValue returns the string value if Kind is KindString, otherwise empty string.
func (v Value) StringValue() string {
	if v.Kind == KindString {
		return v.s.Value()
	}
	return ""
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	type Alias Value
	aux := &struct {
		S string `json:"s,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(&v),
	}
	if v.Kind == KindString {
		aux.S = v.s.Value()
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	type Alias Value
	aux := &struct {
		S string `json:"s,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(v),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if v.Kind == KindString {
		v.s = unique.Make(aux.S)
	}
	return nil
}

// Key returns a stable string representation for use in maps.
func (v Value) Key() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return "i:" + strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return "f:" + strconv.FormatUint(math.Float64bits(v.F64), 16)
	case KindString:
		return "s:" + v.s.Value()
	case KindBool:
		if v.B {
			return "b:1"
		}
		return "b:0"
	case KindArray:
		if len(v.A) == 0 {
			return "a:"
		}
		parts := make([]string, len(v.A))
		for i := range v.A {
			parts[i] = v.A[i].Key()
		}
		return "a:" + strings.Join(parts, "\x1f")
	case KindPoint:
		return "p:" + v.P.String()
	default:
		return "invalid"
	}
}

// Text returns the textual form of scalar values.
//
// Strings are returned as-is, numbers and booleans are formatted. Null,
// arrays and points have no textual form and report false.
func (v Value) Text() (string, bool) {
	switch v.Kind {
	case KindString:
		return v.s.Value(), true
	case KindInt:
		return strconv.FormatInt(v.I64, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.B), true
	default:
		return "", false
	}
}

// AsPoint returns the point value if Kind is KindPoint.
func (v Value) AsPoint() (Point, bool) {
	if v.Kind != KindPoint || v.P == nil {
		return Point{}, false
	}
	return *v.P, true
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, s: unique.Make(v)} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Array returns an array Value.
func Array(v []Value) Value { return Value{Kind: KindArray, A: v} }

// Pt returns a point Value.
func Pt(x, y float64) Value { return Value{Kind: KindPoint, P: &Point{X: x, Y: y}} }

// Strings returns an array Value of strings.
func Strings(v []string) Value {
	arr := make([]Value, len(v))
	for i := range v {
		arr[i] = String(v[i])
	}
	return Array(arr)
}

// Document is a typed attribute document.
type Document map[string]Value

// Clone creates a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}

	clone := make(Document, len(d))
	for k, v := range d {
		clone[k] = v.clone()
	}
	return clone
}

// clone creates a deep copy of a Value, including nested arrays.
func (v Value) clone() Value {
	switch {
	case v.Kind == KindPoint && v.P != nil:
		p := *v.P
		v.P = &p
		return v
	case v.Kind != KindArray || len(v.A) == 0:
		return v
	}

	arrayCopy := make([]Value, len(v.A))
	for i := range v.A {
		arrayCopy[i] = v.A[i].clone()
	}
	v.A = arrayCopy
	return v
}

// Has reports whether the document holds a non-null value for key.
func (d Document) Has(key string) bool {
	v, ok := d[key]
	return ok && v.Kind != KindNull && v.Kind != KindInvalid
}

// GetString returns the textual form of the value stored under key, or def
// if the key is missing or the value has no textual form.
func (d Document) GetString(key, def string) string {
	v, ok := d[key]
	if !ok {
		return def
	}
	if s, ok := v.Text(); ok {
		return s
	}
	return def
}

// GetInt returns the integer form of the value stored under key, or def.
//
// Floats are truncated, strings are parsed as base-10 integers and booleans
// map to 0/1.
func (d Document) GetInt(key string, def int) int {
	v, ok := d[key]
	if !ok {
		return def
	}
	switch v.Kind {
	case KindInt:
		return int(v.I64)
	case KindFloat:
		return int(v.F64)
	case KindString:
		n, err := strconv.Atoi(strings.TrimSpace(v.s.Value()))
		if err != nil {
			return def
		}
		return n
	case KindBool:
		if v.B {
			return 1
		}
		return 0
	default:
		return def
	}
}

// GetBool returns the boolean form of the value stored under key, or def.
func (d Document) GetBool(key string, def bool) bool {
	v, ok := d[key]
	if !ok {
		return def
	}
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.I64 != 0
	case KindString:
		b, err := strconv.ParseBool(v.s.Value())
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// GetPoint returns the point stored under key.
//
// Point values are returned directly, strings are parsed with ParsePoint and
// two-element numeric arrays are read as (x, y).
func (d Document) GetPoint(key string) (Point, bool) {
	v, ok := d[key]
	if !ok {
		return Point{}, false
	}
	switch v.Kind {
	case KindPoint:
		return v.AsPoint()
	case KindString:
		p, err := ParsePoint(v.s.Value())
		if err != nil {
			return Point{}, false
		}
		return p, true
	case KindArray:
		if len(v.A) != 2 || !isNumber(v.A[0]) || !isNumber(v.A[1]) {
			return Point{}, false
		}
		return Point{X: asFloat64(v.A[0]), Y: asFloat64(v.A[1])}, true
	default:
		return Point{}, false
	}
}

// Operator represents a comparison operator for filtering.
type Operator string

const (
	// OpEqual represents the equality operator.
	OpEqual Operator = "eq" // Equal
	// OpNotEqual represents the inequality operator.
	OpNotEqual Operator = "ne"
	// OpGreaterThan represents the greater than operator.
	OpGreaterThan Operator = "gt"
	// OpGreaterEqual represents the greater than or equal operator.
	OpGreaterEqual Operator = "gte"
	// OpLessThan represents the less than operator.
	OpLessThan Operator = "lt"
	// OpLessEqual represents the less than or equal operator.
	OpLessEqual Operator = "lte"
	// OpIn represents the in list operator.
	OpIn Operator = "in"
	// OpContains represents the contains substring operator.
	OpContains Operator = "contains"
)

// Filter represents a single attribute filter condition.
type Filter struct {
	Key      string
	Operator Operator
	Value    Value
}

// FilterSet represents a set of filters that must all match (AND logic).
type FilterSet struct {
	Filters []Filter
}

// NewFilterSet creates a new filter set.
func NewFilterSet(filters ...Filter) *FilterSet {
	return &FilterSet{Filters: filters}
}

// Interface converts the value back to a plain Go value. Points become
// {"x": .., "y": ..} maps so they survive a JSON round trip through FromAny.
func (v Value) Interface() any {
	switch v.Kind {
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.s.Value()
	case KindBool:
		return v.B
	case KindArray:
		out := make([]any, len(v.A))
		for i := range v.A {
			out[i] = v.A[i].Interface()
		}
		return out
	case KindPoint:
		if v.P == nil {
			return nil
		}
		return map[string]any{"x": v.P.X, "y": v.P.Y}
	default:
		return nil
	}
}

// ToMap converts the document to a plain map.
func (d Document) ToMap() map[string]any {
	m := make(map[string]any, len(d))
	for k, v := range d {
		m[k] = v.Interface()
	}
	return m
}
