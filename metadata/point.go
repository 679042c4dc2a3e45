package metadata

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidPoint is returned when a string cannot be parsed as a point.
var ErrInvalidPoint = errors.New("invalid point")

// Point is a 2D point. Gating distances read it as the inclusive integer
// range [X, Y].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String formats the point as "(x, y)".
func (p Point) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
	b.WriteString(", ")
	b.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
	b.WriteByte(')')
	return b.String()
}

// Range returns the point as an inclusive integer range, truncating both
// coordinates toward zero.
func (p Point) Range() (lo, hi int) {
	return int(p.X), int(p.Y)
}

// ParsePoint parses "(x, y)". Whitespace around the coordinates is ignored.
func ParsePoint(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return Point{}, ErrInvalidPoint
	}

	xs, ys, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return Point{}, ErrInvalidPoint
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Point{}, ErrInvalidPoint
	}
	return Point{X: x, Y: y}, nil
}
