// Package partition assigns records to cross-validation partitions and
// selects the records each partition's model must not see.
package partition

import (
	"errors"
	"fmt"

	"github.com/hupe1980/crossval/metadata"
	"github.com/hupe1980/crossval/record"
)

// ErrNegativePartition is returned when a record carries a negative
// partition attribute.
var ErrNegativePartition = errors.New("negative partition index")

// Assignment is the partition index of every record in a dataset.
type Assignment struct {
	// Indices holds the partition of the record at the same position.
	Indices []int
	// N is 1 + the largest partition index, or 0 for an empty dataset.
	N int
}

// Assign reads the partition attribute (default 0) of every record.
func Assign(ds record.Dataset) (Assignment, error) {
	a := Assignment{Indices: make([]int, len(ds))}
	for i := range ds {
		p := ds[i].Partition()
		if p < 0 {
			return Assignment{}, fmt.Errorf("%w: record %d has partition %d", ErrNegativePartition, i, p)
		}
		a.Indices[i] = p
		a.N = max(a.N, p+1)
	}
	return a, nil
}

// Exclusions returns the positions to hold out from the model of partition i.
//
// Without leave-one-out, every record of partition i is held out.
//
// With leave-one-out, partition attributes are ignored. For every record r
// the positions S sharing r's subject are looked up, and if i > |S| the
// position S[i mod |S|] is held out. The comparison is strict, so
// subjects with i or more records contribute nothing. The same position may
// be selected several times and the set collapses duplicates.
func Exclusions(ds record.Dataset, a Assignment, i int, leaveOneOut bool) *metadata.PositionSet {
	removed := metadata.NewPositionSet()

	if !leaveOneOut {
		for j, p := range a.Indices {
			if p == i {
				removed.Add(j)
			}
		}
		return removed
	}

	for j := len(ds) - 1; j >= 0; j-- {
		subject := ds[j].Subject()
		indices := ds.Find(record.KeySubject, subject)
		if len(indices) == 0 {
			continue
		}
		if i > len(indices) {
			removed.Add(indices[i%len(indices)])
		}
	}
	return removed
}

// Remove returns a copy of ds without the given positions. Positions are
// removed from highest to lowest so earlier removals never shift later ones;
// out-of-range positions are ignored.
func Remove(ds record.Dataset, removed *metadata.PositionSet) record.Dataset {
	out := ds.Clone()
	for pos := range removed.Descending() {
		if pos >= len(out) {
			continue
		}
		out = append(out[:pos], out[pos+1:]...)
	}
	return out
}

// Split returns the training set of partition i: ds minus its exclusions.
func Split(ds record.Dataset, a Assignment, i int, leaveOneOut bool) record.Dataset {
	return Remove(ds, Exclusions(ds, a, i, leaveOneOut))
}
