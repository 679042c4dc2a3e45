package crossval

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/crossval/blobstore"
	"github.com/hupe1980/crossval/partition"
	"github.com/hupe1980/crossval/persistence"
	"github.com/hupe1980/crossval/record"
	"github.com/hupe1980/crossval/resource"
	"github.com/hupe1980/crossval/transform"
)

// maxModels bounds the model count read from a serialized ensemble.
const maxModels = 1 << 20

// State is the lifecycle state of a Trainer.
type State int32

const (
	// StateUntrained means no ensemble has been trained or loaded.
	StateUntrained State = iota
	// StateTraining means a Train call is in progress.
	StateTraining
	// StateTrained means the ensemble can be projected and stored.
	StateTrained
)

func (s State) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTraining:
		return "training"
	case StateTrained:
		return "trained"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Trainer trains one transform per partition so that the model used for a
// record never saw that record's partition during training.
//
// Project may be called concurrently. Train, Load and Open take the trainer
// exclusively and block concurrent Project calls until they finish.
type Trainer struct {
	mu sync.RWMutex

	opts     options
	ensemble []transform.Transform
	state    State
}

// New creates an untrained Trainer.
func New(optFns ...Option) *Trainer {
	return &Trainer{opts: applyOptions(optFns)}
}

// Description returns the transform name partition models are created from.
func (t *Trainer) Description() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.opts.description
}

// Len returns the number of models in the ensemble.
func (t *Trainer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ensemble)
}

// State returns the lifecycle state.
func (t *Trainer) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Model returns the model trained for partition i.
func (t *Trainer) Model(i int) (transform.Transform, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.ensemble) {
		return nil, &PartitionRangeError{Partition: i, Size: len(t.ensemble)}
	}
	return t.ensemble[i], nil
}

// Train trains the ensemble on ds.
//
// With fewer than two partitions a single model is trained on the whole
// dataset. Otherwise model i is trained on ds without the records excluded
// for partition i, every partition running as its own job. Existing models
// are retrained in place; missing slots are created from the registry.
//
// If some partition jobs fail, Train returns a *TrainingError naming them.
// The models of the remaining partitions are trained and usable.
func (t *Trainer) Train(ctx context.Context, ds record.Dataset) error {
	start := time.Now()
	log := t.opts.logger.WithRun(uuid.NewString()).WithDescription(t.opts.description)

	assignment, err := partition.Assign(ds)
	if err != nil {
		log.LogTrain(ctx, len(ds), 0, 0, time.Since(start), err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.grow(max(assignment.N, 1)); err != nil {
		log.LogTrain(ctx, len(ds), assignment.N, 0, time.Since(start), err)
		return err
	}

	prev := t.state
	t.state = StateTraining

	var errs []error
	if assignment.N < 2 {
		errs = []error{t.trainPartition(ctx, log, 0, ds, 0)}
	} else {
		errs = t.trainPartitions(ctx, log, ds, assignment)
	}

	var failures []*PartitionError
	for i, err := range errs {
		if err != nil {
			failures = append(failures, &PartitionError{Partition: i, Err: err})
		}
	}

	switch {
	case len(failures) < len(errs):
		t.state = StateTrained
	case prev == StateTrained:
		// Every job failed; models keep whatever state Train left them in.
		t.state = StateTrained
	default:
		t.state = StateUntrained
	}

	elapsed := time.Since(start)
	t.opts.metricsCollector.RecordTrain(len(errs), len(failures), elapsed)

	if len(failures) > 0 {
		err := &TrainingError{Failures: failures}
		log.LogTrain(ctx, len(ds), len(errs), len(failures), elapsed, err)
		return err
	}
	log.LogTrain(ctx, len(ds), len(errs), 0, elapsed, nil)
	return nil
}

// grow appends fresh models until the ensemble has n slots. It must be
// called with t.mu held.
func (t *Trainer) grow(n int) error {
	for len(t.ensemble) < n {
		m, err := t.opts.registry.Make(t.opts.description)
		if err != nil {
			return err
		}
		t.ensemble = append(t.ensemble, m)
	}
	return nil
}

// trainPartitions fans out one job per partition and waits for all of them.
// Slot i of the ensemble and of the returned slice is written only by job i.
func (t *Trainer) trainPartitions(ctx context.Context, log *Logger, ds record.Dataset, a partition.Assignment) []error {
	rc := t.opts.controller
	errs := make([]error, a.N)

	var g errgroup.Group
	for i := range a.N {
		g.Go(func() error {
			if err := rc.AcquireWorker(ctx); err != nil {
				errs[i] = err
				return nil
			}
			defer rc.ReleaseWorker()

			excluded := partition.Exclusions(ds, a, i, t.opts.leaveOneOut)
			data := partition.Remove(ds, excluded)
			errs[i] = t.trainPartition(ctx, log, i, data, excluded.Len())
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

// trainPartition trains slot i on data, holding data's size against the
// memory budget while the model trains.
func (t *Trainer) trainPartition(ctx context.Context, log *Logger, i int, data record.Dataset, excluded int) error {
	rc := t.opts.controller

	size := data.SizeBytes()
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return err
	}
	defer rc.ReleaseMemory(size)

	log.LogPartition(ctx, i, len(data), excluded)

	start := time.Now()
	err := t.ensemble[i].Train(ctx, data)
	elapsed := time.Since(start)

	t.opts.metricsCollector.RecordPartition(i, len(data), elapsed, err)
	log.LogPartitionDone(ctx, i, elapsed, err)
	return err
}

// Project evaluates src with the model of src's partition and writes the
// result to dst. It is safe for concurrent use.
func (t *Trainer) Project(src record.Record, dst *record.Record) error {
	start := time.Now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	p := src.Partition()
	var err error
	if p < 0 || p >= len(t.ensemble) {
		err = &PartitionRangeError{Partition: p, Size: len(t.ensemble)}
	} else {
		err = t.ensemble[p].Project(src, dst)
	}

	t.opts.metricsCollector.RecordProject(time.Since(start), err)
	if err != nil {
		t.opts.logger.LogProject(context.Background(), p, err)
	}
	return err
}

// Store writes the ensemble: an int32 little-endian model count followed by
// each model's own serialized form, in partition order.
func (t *Trainer) Store(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store(w)
}

func (t *Trainer) store(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(t.ensemble))); err != nil {
		return &SerializationError{Op: "store", Model: -1, Err: err}
	}
	for i, m := range t.ensemble {
		if err := m.Store(w); err != nil {
			return &SerializationError{Op: "store", Model: i, Err: err}
		}
	}
	return nil
}

// Load replaces the ensemble with one read from r, in the format written by
// Store. Models are created fresh from the registry. On error the current
// ensemble is left untouched.
func (t *Trainer) Load(r io.Reader) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	staged, err := t.load(r, t.opts.description)
	if err != nil {
		return err
	}
	t.ensemble = staged
	t.state = StateTrained
	return nil
}

func (t *Trainer) load(r io.Reader, description string) ([]transform.Transform, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &SerializationError{Op: "load", Model: -1, Err: err}
	}
	if n < 0 || n > maxModels {
		return nil, &SerializationError{Op: "load", Model: -1, Err: fmt.Errorf("invalid model count %d", n)}
	}

	staged := make([]transform.Transform, n)
	for i := range staged {
		m, err := t.opts.registry.Make(description)
		if err != nil {
			return nil, &SerializationError{Op: "load", Model: i, Err: err}
		}
		if err := m.Load(r); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, &SerializationError{Op: "load", Model: i, Err: err}
		}
		staged[i] = m
	}
	return staged, nil
}

// Save writes the ensemble to store under name, wrapped in a checksummed
// envelope that records the description and compression.
func (t *Trainer) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()

	t.mu.RLock()
	defer t.mu.RUnlock()

	size, err := t.save(ctx, store, name)
	t.opts.metricsCollector.RecordStore(size, time.Since(start), err)
	t.opts.logger.LogStore(ctx, name, len(t.ensemble), err)
	return err
}

func (t *Trainer) save(ctx context.Context, store blobstore.BlobStore, name string) (int64, error) {
	if len(t.ensemble) == 0 {
		return 0, ErrEmptyEnsemble
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	cw := &countingWriter{w: resource.NewRateLimitedWriter(ctx, w, t.opts.controller)}
	if _, err := persistence.WriteEnsemble(cw, t.opts.description, t.opts.compression, t.store); err != nil {
		_ = w.Abort()
		return cw.n, err
	}
	if err := w.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Open replaces the ensemble with one saved under name. The envelope's
// description replaces the trainer's. On error the trainer is unchanged.
func (t *Trainer) Open(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	size, err := t.open(ctx, store, name)
	t.opts.metricsCollector.RecordLoad(size, time.Since(start), err)
	t.opts.logger.LogLoad(ctx, name, len(t.ensemble), err)
	return err
}

func (t *Trainer) open(ctx context.Context, store blobstore.BlobStore, name string) (int64, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer blob.Close()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	var staged []transform.Transform
	header, err := persistence.ReadEnsemble(resource.NewRateLimitedReader(ctx, rc, t.opts.controller), func(h persistence.Header, r io.Reader) error {
		var err error
		staged, err = t.load(r, h.Description)
		return err
	})
	if err != nil {
		var se *SerializationError
		if !errors.As(err, &se) {
			err = &SerializationError{Op: "load", Model: -1, Err: err}
		}
		return blob.Size(), err
	}

	t.ensemble = staged
	t.opts.description = header.Description
	t.state = StateTrained
	return blob.Size(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
