// Package transform defines the trainable model abstraction crossval
// orchestrates, and a name-keyed registry used to instantiate models.
//
// Built-in transforms:
//
//   - Identity: copies the vector; training is a no-op
//   - Center: subtracts the training mean
//   - Scale: divides by the training standard deviation
//
// Custom transforms are added with Register:
//
//	transform.Register("PCA", func() transform.Transform { return &PCA{} })
package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/hupe1980/crossval/record"
)

var (
	// ErrUnknownTransform is returned by Make for unregistered names.
	ErrUnknownTransform = errors.New("unknown transform")

	// ErrDuplicateTransform is returned by Register for names already taken.
	ErrDuplicateTransform = errors.New("transform already registered")

	// ErrInsufficientData is returned by Train when the data cannot fit the model.
	ErrInsufficientData = errors.New("insufficient training data")
)

// Transform is a trainable model.
//
// Train is called at most once at a time per instance. Project must be safe
// for concurrent use once training has completed. Store and Load must be
// self-delimiting: Load consumes exactly the bytes Store produced.
type Transform interface {
	Train(ctx context.Context, data record.Dataset) error
	Project(src record.Record, dst *record.Record) error
	Store(w io.Writer) error
	Load(r io.Reader) error
}

// Factory creates a fresh, untrained transform.
type Factory func() Transform

// Registry maps names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("transform: invalid registration %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTransform, name)
	}
	r.factories[name] = f
	return nil
}

// Make creates a new transform by name.
func (r *Registry) Make(name string) (Transform, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
	return f(), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Default is the process-wide registry preloaded with the built-in transforms.
var Default = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("Identity", func() Transform { return &Identity{} })
	_ = r.Register("Center", func() Transform { return &Center{} })
	_ = r.Register("Scale", func() Transform { return &Scale{} })
	return r
}

// Register adds a factory to the Default registry.
func Register(name string, f Factory) error {
	return Default.Register(name, f)
}

// Make creates a transform from the Default registry.
func Make(name string) (Transform, error) {
	return Default.Make(name)
}
