package metadata

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidFilter is returned when a filter expression cannot be parsed.
var ErrInvalidFilter = errors.New("invalid filter")

// Operators returns every supported operator.
func Operators() []Operator {
	return []Operator{OpEqual, OpNotEqual, OpGreaterThan, OpGreaterEqual, OpLessThan, OpLessEqual, OpIn, OpContains}
}

// NewFilter builds a filter from a textual operand. Integers, floats and
// true/false are typed so they compare against decoded JSON attributes.
// The operand of OpIn is a comma separated list.
func NewFilter(key string, op Operator, operand string) (Filter, error) {
	if key == "" {
		return Filter{}, fmt.Errorf("%w: empty key", ErrInvalidFilter)
	}
	if !slices.Contains(Operators(), op) {
		return Filter{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, op)
	}

	f := Filter{Key: key, Operator: op}
	switch op {
	case OpIn:
		parts := strings.Split(operand, ",")
		items := make([]Value, len(parts))
		for i, p := range parts {
			items[i] = parseOperand(strings.TrimSpace(p))
		}
		f.Value = Array(items)
	case OpContains:
		f.Value = String(operand)
	default:
		f.Value = parseOperand(operand)
	}
	return f, nil
}

// ParseFilter parses "key op operand", for example "Age gte 30" or
// "Gender in M,F". The operand is everything after the operator.
func ParseFilter(expr string) (Filter, error) {
	fields := strings.Fields(expr)
	if len(fields) < 3 {
		return Filter{}, fmt.Errorf("%w: %q: want \"key op operand\"", ErrInvalidFilter, expr)
	}
	return NewFilter(fields[0], Operator(fields[1]), strings.Join(fields[2:], " "))
}

func parseOperand(s string) Value {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	switch s {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	return String(s)
}

// Matches checks if the provided document matches this filter.
func (f *Filter) Matches(doc Document) bool {
	value, exists := doc[f.Key]
	if !exists {
		return false
	}
	return f.MatchesValue(value)
}

// MatchesValue checks a single value against the filter's operator and operand.
func (f *Filter) MatchesValue(value Value) bool {
	switch f.Operator {
	case OpEqual:
		return compareEqual(value, f.Value)
	case OpNotEqual:
		return !compareEqual(value, f.Value)
	case OpGreaterThan:
		return compareGreater(value, f.Value)
	case OpGreaterEqual:
		return compareGreater(value, f.Value) || compareEqual(value, f.Value)
	case OpLessThan:
		return compareLess(value, f.Value)
	case OpLessEqual:
		return compareLess(value, f.Value) || compareEqual(value, f.Value)
	case OpIn:
		return compareIn(value, f.Value)
	case OpContains:
		return compareContains(value, f.Value)
	default:
		return false
	}
}

// Matches checks if the provided document matches all filters in the set.
func (fs *FilterSet) Matches(doc Document) bool {
	for _, filter := range fs.Filters {
		if !filter.Matches(doc) {
			return false
		}
	}
	return true
}

// compareEqual compares two values for equality.
func compareEqual(a, b Value) bool {
	if a.Kind == KindNull && b.Kind == KindNull {
		return true
	}
	if a.Kind == KindNull || b.Kind == KindNull {
		return false
	}

	if isNumber(a) && isNumber(b) {
		// Prefer exact int compare when possible.
		if a.Kind == KindInt && b.Kind == KindInt {
			return a.I64 == b.I64
		}
		return asFloat64(a) == asFloat64(b)
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.s == b.s
	case KindBool:
		return a.B == b.B
	case KindPoint:
		return a.P != nil && b.P != nil && *a.P == *b.P
	case KindArray:
		if len(a.A) != len(b.A) {
			return false
		}
		for i := range a.A {
			if !compareEqual(a.A[i], b.A[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func compareGreater(a, b Value) bool {
	if !isNumber(a) || !isNumber(b) {
		return false
	}
	return asFloat64(a) > asFloat64(b)
}

func compareLess(a, b Value) bool {
	if !isNumber(a) || !isNumber(b) {
		return false
	}
	return asFloat64(a) < asFloat64(b)
}

func compareIn(a, b Value) bool {
	if b.Kind != KindArray {
		return false
	}
	for _, item := range b.A {
		if compareEqual(a, item) {
			return true
		}
	}
	return false
}

func compareContains(a, b Value) bool {
	if a.Kind != KindString || b.Kind != KindString {
		return false
	}
	return strings.Contains(a.s.Value(), b.s.Value())
}

func isNumber(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func asFloat64(v Value) float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.I64)
	case KindFloat:
		return v.F64
	default:
		return 0
	}
}
