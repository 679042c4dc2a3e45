package transform

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/crossval/record"
)

// maxDimension bounds vector lengths read from serialized transforms.
const maxDimension = 1 << 24

// Identity copies the source vector. It has no state.
type Identity struct{}

// Train is a no-op.
func (*Identity) Train(context.Context, record.Dataset) error { return nil }

// Project copies src into dst.
func (*Identity) Project(src record.Record, dst *record.Record) error {
	dst.Metadata = src.Metadata
	dst.Vector = append(dst.Vector[:0], src.Vector...)
	return nil
}

// Store writes nothing.
func (*Identity) Store(io.Writer) error { return nil }

// Load reads nothing.
func (*Identity) Load(io.Reader) error { return nil }

// Center subtracts the per-dimension training mean.
type Center struct {
	Mean []float32
}

// Train computes the mean vector.
func (c *Center) Train(ctx context.Context, data record.Dataset) error {
	mean, err := moments(ctx, data, false)
	if err != nil {
		return err
	}
	c.Mean = mean[0]
	return nil
}

// Project writes src - mean into dst.
func (c *Center) Project(src record.Record, dst *record.Record) error {
	if len(src.Vector) != len(c.Mean) {
		return fmt.Errorf("transform: center: dimension mismatch: expected %d, got %d", len(c.Mean), len(src.Vector))
	}
	out := make([]float32, len(src.Vector))
	for i, v := range src.Vector {
		out[i] = v - c.Mean[i]
	}
	dst.Metadata = src.Metadata
	dst.Vector = out
	return nil
}

// Store writes the mean vector.
func (c *Center) Store(w io.Writer) error { return writeVector(w, c.Mean) }

// Load reads the mean vector.
func (c *Center) Load(r io.Reader) error {
	v, err := readVector(r)
	if err != nil {
		return err
	}
	c.Mean = v
	return nil
}

// Scale divides each dimension by its training standard deviation.
// Dimensions with zero deviation are passed through unchanged.
type Scale struct {
	StdDev []float32
}

// Train computes the standard deviation vector.
func (s *Scale) Train(ctx context.Context, data record.Dataset) error {
	m, err := moments(ctx, data, true)
	if err != nil {
		return err
	}
	s.StdDev = m[1]
	return nil
}

// Project writes src / stddev into dst.
func (s *Scale) Project(src record.Record, dst *record.Record) error {
	if len(src.Vector) != len(s.StdDev) {
		return fmt.Errorf("transform: scale: dimension mismatch: expected %d, got %d", len(s.StdDev), len(src.Vector))
	}
	out := make([]float32, len(src.Vector))
	for i, v := range src.Vector {
		if s.StdDev[i] == 0 {
			out[i] = v
			continue
		}
		out[i] = v / s.StdDev[i]
	}
	dst.Metadata = src.Metadata
	dst.Vector = out
	return nil
}

// Store writes the deviation vector.
func (s *Scale) Store(w io.Writer) error { return writeVector(w, s.StdDev) }

// Load reads the deviation vector.
func (s *Scale) Load(r io.Reader) error {
	v, err := readVector(r)
	if err != nil {
		return err
	}
	s.StdDev = v
	return nil
}

// moments returns the mean and, if withStdDev, the population standard
// deviation of the dataset's vectors.
func moments(ctx context.Context, data record.Dataset, withStdDev bool) ([2][]float32, error) {
	var out [2][]float32
	if len(data) == 0 {
		return out, ErrInsufficientData
	}

	dim := data.Dimension()
	sum := make([]float64, dim)
	sq := make([]float64, dim)
	for i := range data {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return out, err
			}
		}
		if len(data[i].Vector) != dim {
			return out, fmt.Errorf("%w: record %d has dimension %d, expected %d", ErrInsufficientData, i, len(data[i].Vector), dim)
		}
		for j, v := range data[i].Vector {
			sum[j] += float64(v)
			sq[j] += float64(v) * float64(v)
		}
	}

	n := float64(len(data))
	out[0] = make([]float32, dim)
	for j := range sum {
		out[0][j] = float32(sum[j] / n)
	}
	if withStdDev {
		out[1] = make([]float32, dim)
		for j := range sq {
			mean := sum[j] / n
			out[1][j] = float32(math.Sqrt(max(sq[j]/n-mean*mean, 0)))
		}
	}
	return out, nil
}

func writeVector(w io.Writer, v []float32) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(v))); err != nil {
		return err
	}
	if len(v) == 0 {
		return nil
	}
	return binary.Write(w, binary.LittleEndian, v)
}

func readVector(r io.Reader) ([]float32, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxDimension {
		return nil, fmt.Errorf("transform: vector length %d exceeds limit", n)
	}
	if n == 0 {
		return nil, nil
	}
	v := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return nil, err
	}
	return v, nil
}
