package crossval

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see the
// promcollector package for a Prometheus implementation.
type MetricsCollector interface {
	// RecordTrain is called after each Train call.
	// partitions is the number of partition jobs (1 for degenerate datasets),
	// failed is the number that returned an error.
	RecordTrain(partitions, failed int, duration time.Duration)

	// RecordPartition is called after each partition job.
	// records is the size of the job's training set.
	RecordPartition(partition, records int, duration time.Duration, err error)

	// RecordProject is called after each Project call.
	RecordProject(duration time.Duration, err error)

	// RecordStore is called after each ensemble serialization.
	RecordStore(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after each ensemble deserialization.
	RecordLoad(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrain(int, int, time.Duration)            {}
func (NoopMetricsCollector) RecordPartition(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordProject(time.Duration, error)             {}
func (NoopMetricsCollector) RecordStore(int64, time.Duration, error)        {}
func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrainCount          atomic.Int64
	TrainTotalNanos     atomic.Int64
	PartitionCount      atomic.Int64
	PartitionErrors     atomic.Int64
	PartitionRecords    atomic.Int64
	PartitionTotalNanos atomic.Int64
	ProjectCount        atomic.Int64
	ProjectErrors       atomic.Int64
	ProjectTotalNanos   atomic.Int64
	StoreCount          atomic.Int64
	StoreErrors         atomic.Int64
	StoreBytes          atomic.Int64
	LoadCount           atomic.Int64
	LoadErrors          atomic.Int64
	LoadBytes           atomic.Int64
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(_, _ int, duration time.Duration) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(_, records int, duration time.Duration, err error) {
	b.PartitionCount.Add(1)
	b.PartitionRecords.Add(int64(records))
	b.PartitionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PartitionErrors.Add(1)
	}
}

// RecordProject implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProject(duration time.Duration, err error) {
	b.ProjectCount.Add(1)
	b.ProjectTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ProjectErrors.Add(1)
	}
}

// RecordStore implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStore(bytes int64, _ time.Duration, err error) {
	b.StoreCount.Add(1)
	if err != nil {
		b.StoreErrors.Add(1)
		return
	}
	b.StoreBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int64, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TrainCount:        b.TrainCount.Load(),
		TrainAvgNanos:     avg(b.TrainTotalNanos.Load(), b.TrainCount.Load()),
		PartitionCount:    b.PartitionCount.Load(),
		PartitionErrors:   b.PartitionErrors.Load(),
		PartitionRecords:  b.PartitionRecords.Load(),
		PartitionAvgNanos: avg(b.PartitionTotalNanos.Load(), b.PartitionCount.Load()),
		ProjectCount:      b.ProjectCount.Load(),
		ProjectErrors:     b.ProjectErrors.Load(),
		ProjectAvgNanos:   avg(b.ProjectTotalNanos.Load(), b.ProjectCount.Load()),
		StoreCount:        b.StoreCount.Load(),
		StoreErrors:       b.StoreErrors.Load(),
		StoreBytes:        b.StoreBytes.Load(),
		LoadCount:         b.LoadCount.Load(),
		LoadErrors:        b.LoadErrors.Load(),
		LoadBytes:         b.LoadBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TrainCount        int64
	TrainAvgNanos     int64
	PartitionCount    int64
	PartitionErrors   int64
	PartitionRecords  int64
	PartitionAvgNanos int64
	ProjectCount      int64
	ProjectErrors     int64
	ProjectAvgNanos   int64
	StoreCount        int64
	StoreErrors       int64
	StoreBytes        int64
	LoadCount         int64
	LoadErrors        int64
	LoadBytes         int64
}
