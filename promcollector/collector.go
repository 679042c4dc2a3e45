// Package promcollector exports trainer metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc := promcollector.New(reg)
//	tr := crossval.New(crossval.WithMetricsCollector(mc))
package promcollector

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/crossval"
)

var _ crossval.MetricsCollector = (*Collector)(nil)

// Collector implements crossval.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency        *prometheus.HistogramVec
	partitionLatency *prometheus.HistogramVec
	partitionRecords prometheus.Histogram
	failedPartitions prometheus.Counter
	bytes            *prometheus.CounterVec
}

// New creates a Collector and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crossval_operation_latency_seconds",
			Help:    "Latency of trainer operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		partitionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crossval_partition_train_seconds",
			Help:    "Training time of a single partition model",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"partition", "status"}),
		partitionRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crossval_partition_records",
			Help:    "Training set size of partition models",
			Buckets: prometheus.ExponentialBuckets(1, 4, 12),
		}),
		failedPartitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crossval_failed_partitions_total",
			Help: "Total partition jobs that failed",
		}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crossval_ensemble_bytes_total",
			Help: "Total ensemble bytes saved and opened",
		}, []string{"op"}),
	}

	reg.MustRegister(c.opLatency, c.partitionLatency, c.partitionRecords, c.failedPartitions, c.bytes)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordTrain implements crossval.MetricsCollector.
func (c *Collector) RecordTrain(_, failed int, d time.Duration) {
	st := "success"
	if failed > 0 {
		st = "error"
	}
	c.opLatency.WithLabelValues("train", st).Observe(d.Seconds())
	c.failedPartitions.Add(float64(failed))
}

// RecordPartition implements crossval.MetricsCollector.
func (c *Collector) RecordPartition(partition, records int, d time.Duration, err error) {
	c.partitionLatency.WithLabelValues(strconv.Itoa(partition), status(err)).Observe(d.Seconds())
	c.partitionRecords.Observe(float64(records))
}

// RecordProject implements crossval.MetricsCollector.
func (c *Collector) RecordProject(d time.Duration, err error) {
	c.opLatency.WithLabelValues("project", status(err)).Observe(d.Seconds())
}

// RecordStore implements crossval.MetricsCollector.
func (c *Collector) RecordStore(bytes int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("store", status(err)).Observe(d.Seconds())
	if err == nil {
		c.bytes.WithLabelValues("store").Add(float64(bytes))
	}
}

// RecordLoad implements crossval.MetricsCollector.
func (c *Collector) RecordLoad(bytes int64, d time.Duration, err error) {
	c.opLatency.WithLabelValues("load", status(err)).Observe(d.Seconds())
	if err == nil {
		c.bytes.WithLabelValues("load").Add(float64(bytes))
	}
}
