package distance

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/hupe1980/crossval/metadata"
	"github.com/hupe1980/crossval/record"
)

const (
	// Accept means the pair may be compared, with no preference.
	Accept float32 = 0
	// Reject means the pair must never be considered a match.
	Reject float32 = -math.MaxFloat32
)

// Distance compares two records. Implementations must be safe for
// concurrent use.
type Distance interface {
	Compare(a, b record.Record) float32
}

// Func adapts a function to the Distance interface.
type Func func(a, b record.Record) float32

// Compare calls f(a, b).
func (f Func) Compare(a, b record.Record) float32 { return f(a, b) }

// PartitionGate rejects pairs from different partitions, so a query is only
// compared against gallery entries evaluated by the same partition's model.
type PartitionGate struct {
	extendedGallery bool
}

// PartitionGateOption configures a PartitionGate.
type PartitionGateOption func(*PartitionGate)

// WithExtendedGallery accepts records flagged allPartitions=true regardless
// of partition, so an extended gallery is compared against every partition.
func WithExtendedGallery() PartitionGateOption {
	return func(g *PartitionGate) {
		g.extendedGallery = true
	}
}

// NewPartitionGate creates a PartitionGate.
func NewPartitionGate(optFns ...PartitionGateOption) *PartitionGate {
	g := &PartitionGate{}
	for _, fn := range optFns {
		fn(g)
	}
	return g
}

// Compare implements Distance.
func (g *PartitionGate) Compare(a, b record.Record) float32 {
	if g.extendedGallery && (allPartitions(a) || allPartitions(b)) {
		return Accept
	}
	if a.Partition() != b.Partition() {
		return Reject
	}
	return Accept
}

func allPartitions(r record.Record) bool {
	return r.Metadata.GetBool(record.KeyAllPartitions, false)
}

// FilterGate checks the first record's attributes against an allowlist.
// The second record is not inspected.
type FilterGate struct {
	filters metadata.FilterSet
}

// NewFilterGate creates a FilterGate from key -> allowed values. Keys with
// no allowed values impose no constraint. The map is copied.
func NewFilterGate(allow map[string][]string) *FilterGate {
	g := &FilterGate{}
	for _, key := range slices.Sorted(maps.Keys(allow)) {
		values := allow[key]
		if len(values) == 0 {
			continue
		}
		g.filters.Filters = append(g.filters.Filters, metadata.Filter{
			Key:      key,
			Operator: metadata.OpIn,
			Value:    metadata.Strings(slices.Clone(values)),
		})
	}
	return g
}

// Compare implements Distance.
func (g *FilterGate) Compare(a, _ record.Record) float32 {
	for i := range g.filters.Filters {
		f := &g.filters.Filters[i]
		value := a.Metadata.GetString(f.Key, "")
		if value == "" {
			return Reject
		}
		if !f.MatchesValue(metadata.String(value)) {
			return Reject
		}
	}
	return Accept
}

// MetadataGate checks the first record's attributes against the second's.
//
// For each key, the second record's value is either an exact value or an
// inclusive integer range "(lo, hi)", given as a string or a point
// attribute. Keys missing on either side are skipped.
type MetadataGate struct {
	keys []string
}

// NewMetadataGate creates a MetadataGate over keys. The slice is copied.
func NewMetadataGate(keys []string) *MetadataGate {
	return &MetadataGate{keys: slices.Clone(keys)}
}

// Compare implements Distance.
func (g *MetadataGate) Compare(a, b record.Record) float32 {
	for _, key := range g.keys {
		aValue := a.Metadata.GetString(key, "")
		bValue := b.Metadata.GetString(key, "")

		// The query value may be a range.
		if bValue == "" {
			if p, ok := b.Metadata.GetPoint(key); ok {
				bValue = p.String()
			}
		}

		if aValue == "" || bValue == "" {
			continue
		}

		if !matchValue(aValue, bValue) {
			return Reject
		}
	}
	return Accept
}

// matchValue reports whether target satisfies query. A query that does not
// parse as a range falls back to exact string equality. Inside a range only
// the canonical decimal form of an integer matches, so "030" and " 30" do not.
func matchValue(target, query string) bool {
	rng, err := metadata.ParsePoint(query)
	if err != nil {
		return target == query
	}

	lo, hi := rng.Range()
	n, err := strconv.Atoi(target)
	if err != nil || strconv.Itoa(n) != target {
		return false
	}
	return n >= lo && n <= hi
}

// Chain returns a Distance that rejects as soon as any gate rejects, and
// otherwise returns the sum of the gates' scores.
func Chain(gates ...Distance) Distance {
	gates = slices.Clone(gates)
	return Func(func(a, b record.Record) float32 {
		var score float32
		for _, g := range gates {
			s := g.Compare(a, b)
			if s == Reject {
				return Reject
			}
			score += s
		}
		return score
	})
}

// Config holds the settings gates are built from.
type Config struct {
	// Filters is the allowlist for the "Filter" gate.
	Filters map[string][]string
	// Keys lists the attributes compared by the "Metadata" gate.
	Keys []string
	// ExtendedGallery enables allPartitions handling in the "CrossValidate" gate.
	ExtendedGallery bool
}

// New returns the gate registered under name.
func New(name string, cfg Config) (Distance, error) {
	switch name {
	case "CrossValidate":
		var opts []PartitionGateOption
		if cfg.ExtendedGallery {
			opts = append(opts, WithExtendedGallery())
		}
		return NewPartitionGate(opts...), nil
	case "Filter":
		return NewFilterGate(cfg.Filters), nil
	case "Metadata":
		return NewMetadataGate(cfg.Keys), nil
	default:
		return nil, fmt.Errorf("unsupported distance: %q", name)
	}
}

// Names returns the names accepted by New.
func Names() []string {
	return []string{"CrossValidate", "Filter", "Metadata"}
}
