// Package crossval trains an ensemble of models under k-fold
// cross-validation so that evaluation never scores a record with a model
// that saw the record's fold during training.
//
// # Partitions
//
// Every record carries an optional integer "Partition" attribute (default 0).
// A dataset whose largest partition is p has p+1 partitions. Model i is
// trained on every record except those of partition i, and a record of
// partition i is projected with model i only:
//
//	tr := crossval.New(crossval.WithDescription("Center"))
//	if err := tr.Train(ctx, ds); err != nil {
//	    // *crossval.TrainingError lists failed partitions
//	}
//	var out record.Record
//	err := tr.Project(ds[0], &out)
//
// A dataset with a single partition trains one model on everything.
//
// # Leave-one-out
//
// WithLeaveOneOut(true) ignores partition attributes when choosing what to
// hold out and instead removes records by subject: for model i, each subject
// with fewer than i records loses its record at index i mod |S|.
//
// # Concurrency
//
// Partition models train in parallel, bounded by WithWorkers or a shared
// resource.Controller that also budgets memory and IO. Project is safe for
// concurrent use; Train, Load and Open block projections until they finish.
//
// # Persistence
//
// Store and Load use a compact binary form: an int32 little-endian model
// count followed by each model's own serialization. Save and Open wrap the
// same bytes in a checksummed, optionally compressed envelope written to any
// blobstore.BlobStore:
//
//	store := blobstore.NewLocalStore("./models")
//	_ = tr.Save(ctx, store, "run-42.xval")
//
//	tr2 := crossval.New()
//	_ = tr2.Open(ctx, store, "run-42.xval") // restores the description too
//
// # Gating
//
// The distance package provides the comparison gates used when scoring an
// evaluation: PartitionGate only lets records of the same partition meet,
// FilterGate restricts query attributes and MetadataGate matches attributes
// against target values or numeric ranges.
//
// # Observability
//
// WithLogger attaches a structured slog-based logger and WithMetricsCollector
// receives per-train, per-partition, projection and persistence metrics. The
// promcollector package exports them to Prometheus.
package crossval
