package crossval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/crossval/partition"
	"github.com/hupe1980/crossval/transform"
)

var (
	// ErrPartitionRange is matched by *PartitionRangeError.
	ErrPartitionRange = errors.New("partition out of range")

	// ErrEmptyEnsemble is returned when persisting a trainer that holds no models.
	ErrEmptyEnsemble = errors.New("ensemble is empty")

	// ErrUnknownTransform is returned when the description names no registered transform.
	ErrUnknownTransform = transform.ErrUnknownTransform

	// ErrNegativePartition is returned by Train for records with a negative partition.
	ErrNegativePartition = partition.ErrNegativePartition
)

// PartitionRangeError indicates a record whose partition has no trained model.
type PartitionRangeError struct {
	Partition int
	Size      int
}

func (e *PartitionRangeError) Error() string {
	return fmt.Sprintf("partition %d out of range: ensemble has %d models", e.Partition, e.Size)
}

func (e *PartitionRangeError) Unwrap() error { return ErrPartitionRange }

// PartitionError is the failure of a single partition's training job.
type PartitionError struct {
	Partition int
	Err       error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %d: %v", e.Partition, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }

// TrainingError reports every partition whose job failed. Models of the
// other partitions are trained and usable.
type TrainingError struct {
	Failures []*PartitionError
}

func (e *TrainingError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("training failed for %d partition(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the per-partition errors to errors.Is and errors.As.
func (e *TrainingError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Partitions returns the indices of the failed partitions in ascending order.
func (e *TrainingError) Partitions() []int {
	out := make([]int, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Partition
	}
	return out
}

// SerializationError indicates a failure while storing or loading an ensemble.
// Model is the index of the model being processed, or -1 for the count prefix
// and envelope.
type SerializationError struct {
	Op    string
	Model int
	Err   error
}

func (e *SerializationError) Error() string {
	if e.Model < 0 {
		return fmt.Sprintf("%s ensemble: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s ensemble: model %d: %v", e.Op, e.Model, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }
