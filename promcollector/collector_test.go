package promcollector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossval"
	"github.com/hupe1980/crossval/blobstore"
	"github.com/hupe1980/crossval/record"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordTrain(3, 1, time.Millisecond)
	c.RecordPartition(0, 10, time.Millisecond, nil)
	c.RecordPartition(1, 0, time.Millisecond, errors.New("boom"))
	c.RecordStore(128, time.Millisecond, nil)
	c.RecordStore(64, time.Millisecond, errors.New("boom"))
	c.RecordLoad(128, time.Millisecond, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.failedPartitions))
	assert.Equal(t, float64(128), testutil.ToFloat64(c.bytes.WithLabelValues("store")))
	assert.Equal(t, float64(128), testutil.ToFloat64(c.bytes.WithLabelValues("load")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.partitionLatency))
}

func TestCollectorWithTrainer(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c := New(reg)

	var ds record.Dataset
	for i := range 6 {
		ds = append(ds, record.New([]float32{float32(i)}).Partition(i%2).Build())
	}

	tr := crossval.New(crossval.WithDescription("Center"), crossval.WithMetricsCollector(c))
	require.NoError(t, tr.Train(ctx, ds))

	var out record.Record
	require.NoError(t, tr.Project(ds[0], &out))
	require.NoError(t, tr.Save(ctx, blobstore.NewMemoryStore(), "m"))

	assert.Equal(t, 2, testutil.CollectAndCount(c.partitionLatency))
	assert.Equal(t, 3, testutil.CollectAndCount(c.opLatency))
	assert.Zero(t, testutil.ToFloat64(c.failedPartitions))
	assert.Positive(t, testutil.ToFloat64(c.bytes.WithLabelValues("store")))
}
