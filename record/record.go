package record

import (
	"slices"

	"github.com/hupe1980/crossval/metadata"
)

const (
	// KeySubject names the identity attribute.
	KeySubject = "Subject"
	// KeyPartition names the partition attribute.
	KeyPartition = "Partition"
	// KeyAllPartitions marks extended-gallery records that are compared
	// against every testing partition.
	KeyAllPartitions = "allPartitions"
)

// Record is a training/evaluation unit.
type Record struct {
	Metadata metadata.Document
	Vector   []float32
}

// Partition returns the record's partition attribute, 0 when absent.
func (r Record) Partition() int {
	return r.Metadata.GetInt(KeyPartition, 0)
}

// Subject returns the record's subject attribute, "" when absent.
func (r Record) Subject() string {
	return r.Metadata.GetString(KeySubject, "")
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	return Record{
		Metadata: r.Metadata.Clone(),
		Vector:   slices.Clone(r.Vector),
	}
}

// Builder constructs records fluently.
type Builder struct {
	rec Record
}

// New starts a record with the given vector.
func New(vec []float32) *Builder {
	return &Builder{rec: Record{Vector: vec, Metadata: metadata.Document{}}}
}

// With sets an attribute.
func (b *Builder) With(key string, v metadata.Value) *Builder {
	b.rec.Metadata[key] = v
	return b
}

// Subject sets the subject attribute.
func (b *Builder) Subject(s string) *Builder {
	return b.With(KeySubject, metadata.String(s))
}

// Partition sets the partition attribute.
func (b *Builder) Partition(p int) *Builder {
	return b.With(KeyPartition, metadata.Int(int64(p)))
}

// Build returns the record.
func (b *Builder) Build() Record {
	return b.rec
}

// Dataset is an ordered sequence of records.
type Dataset []Record

// Clone returns a copy of the dataset slice. Records are shared; they are
// treated as immutable.
func (d Dataset) Clone() Dataset {
	return slices.Clone(d)
}

// Find returns, in order, the positions of all records whose attribute key
// has the textual form value.
func (d Dataset) Find(key, value string) []int {
	var out []int
	for i := range d {
		if d[i].Metadata.GetString(key, "") == value {
			out = append(out, i)
		}
	}
	return out
}

// Select returns the records matching fs, in order.
func (d Dataset) Select(fs *metadata.FilterSet) Dataset {
	if fs == nil {
		return d.Clone()
	}
	out := make(Dataset, 0, len(d))
	for _, r := range d {
		if fs.Matches(r.Metadata) {
			out = append(out, r)
		}
	}
	return out
}

// Dimension returns the vector length of the first record, 0 if empty.
func (d Dataset) Dimension() int {
	if len(d) == 0 {
		return 0
	}
	return len(d[0].Vector)
}

// SizeBytes estimates the memory footprint of the dataset's vectors.
func (d Dataset) SizeBytes() int64 {
	var n int64
	for i := range d {
		n += int64(len(d[i].Vector)) * 4
	}
	return n
}
