package crossval

import (
	"log/slog"

	"github.com/hupe1980/crossval/persistence"
	"github.com/hupe1980/crossval/resource"
	"github.com/hupe1980/crossval/transform"
)

// DefaultDescription names the transform trained when none is configured.
const DefaultDescription = "Identity"

type options struct {
	description      string
	leaveOneOut      bool
	workers          int64
	registry         *transform.Registry
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	compression      persistence.Compression
}

// Option configures a Trainer.
type Option func(*options)

// WithDescription sets the registered transform name every partition model
// is created from. Defaults to "Identity".
func WithDescription(desc string) Option {
	return func(o *options) {
		o.description = desc
	}
}

// WithLeaveOneOut selects subject-based leave-one-out exclusion instead of
// holding out each partition.
func WithLeaveOneOut(enabled bool) Option {
	return func(o *options) {
		o.leaveOneOut = enabled
	}
}

// WithWorkers bounds the number of partition jobs that train at once.
// Ignored when WithResourceController is given. Defaults to the available
// parallelism.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = int64(n)
	}
}

// WithRegistry sets the registry transforms are created from.
// If nil is passed, transform.Default is used.
func WithRegistry(r *transform.Registry) Option {
	return func(o *options) {
		if r == nil {
			r = transform.Default
		}
		o.registry = r
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &crossval.BasicMetricsCollector{}
//	tr := crossval.New(crossval.WithMetricsCollector(metrics))
//	// ... train ...
//	stats := metrics.GetStats()
//	fmt.Printf("Partitions: %d, failed: %d\n", stats.PartitionCount, stats.PartitionErrors)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := crossval.NewJSONLogger(slog.LevelInfo)
//	tr := crossval.New(crossval.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares worker slots, the memory budget and the IO
// limit with other trainers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithCompression sets the payload compression used by Save.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		description:      DefaultDescription,
		registry:         transform.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.controller == nil {
		o.controller = resource.NewController(resource.Config{MaxWorkers: o.workers})
	}
	return o
}
