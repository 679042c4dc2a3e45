// Package config loads trainer, gate and storage settings from YAML or JSON
// files and turns them into crossval options.
//
// A minimal file:
//
//	description: Center
//	workers: 4
//	compression: zstd
//	gates:
//	  - name: CrossValidate
//	  - name: Metadata
//	    keys: [Age]
//	select:
//	  - key: Age
//	    op: gte
//	    value: "18"
//	storage:
//	  backend: local
//	  path: ./models
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/crossval"
	"github.com/hupe1980/crossval/blobstore"
	"github.com/hupe1980/crossval/blobstore/minio"
	"github.com/hupe1980/crossval/blobstore/s3"
	"github.com/hupe1980/crossval/codec"
	"github.com/hupe1980/crossval/distance"
	"github.com/hupe1980/crossval/metadata"
	"github.com/hupe1980/crossval/persistence"
	"github.com/hupe1980/crossval/resource"
)

// Config is the file representation of a trainer setup.
type Config struct {
	Description string `yaml:"description" json:"description" validate:"required"`
	LeaveOneOut bool   `yaml:"leave_one_out" json:"leave_one_out"`

	Workers            int   `yaml:"workers" json:"workers" validate:"gte=0"`
	MemoryLimitBytes   int64 `yaml:"memory_limit_bytes" json:"memory_limit_bytes" validate:"gte=0"`
	IOLimitBytesPerSec int64 `yaml:"io_limit_bytes_per_sec" json:"io_limit_bytes_per_sec" validate:"gte=0"`

	Compression string `yaml:"compression" json:"compression" validate:"omitempty,oneof=none lz4 zstd"`
	LogLevel    string `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat   string `yaml:"log_format" json:"log_format" validate:"omitempty,oneof=text json"`

	Gates   []Gate     `yaml:"gates" json:"gates" validate:"dive"`
	Select  []Selector `yaml:"select,omitempty" json:"select,omitempty" validate:"dive"`
	Storage Storage    `yaml:"storage" json:"storage"`
}

// Selector is one condition a record must meet to be trained on. Value is
// the textual operand, comma separated for "in".
type Selector struct {
	Key   string `yaml:"key" json:"key" validate:"required"`
	Op    string `yaml:"op" json:"op" validate:"required,oneof=eq ne gt gte lt lte in contains"`
	Value string `yaml:"value" json:"value"`
}

// Gate configures one distance gate. Gates are chained in file order.
type Gate struct {
	Name            string              `yaml:"name" json:"name" validate:"required,oneof=CrossValidate Filter Metadata"`
	Filters         map[string][]string `yaml:"filters,omitempty" json:"filters,omitempty"`
	Keys            []string            `yaml:"keys,omitempty" json:"keys,omitempty"`
	ExtendedGallery bool                `yaml:"extended_gallery" json:"extended_gallery"`
}

// Storage selects the blob store ensembles are saved to.
type Storage struct {
	Backend   string `yaml:"backend" json:"backend" validate:"omitempty,oneof=memory local s3 minio"`
	Path      string `yaml:"path" json:"path" validate:"required_if=Backend local"`
	Bucket    string `yaml:"bucket" json:"bucket" validate:"required_if=Backend s3,required_if=Backend minio"`
	Prefix    string `yaml:"prefix" json:"prefix"`
	Region    string `yaml:"region" json:"region"`
	Endpoint  string `yaml:"endpoint" json:"endpoint" validate:"required_if=Backend minio"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	Secure    bool   `yaml:"secure" json:"secure"`
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Description: crossval.DefaultDescription,
		Compression: "none",
		LogLevel:    "info",
		LogFormat:   "text",
		Gates:       []Gate{{Name: "CrossValidate"}},
		Storage:     Storage{Backend: "local", Path: "."},
	}
}

// Load reads a config file. Files ending in .json are decoded with the
// default codec, everything else as YAML. Missing fields keep their
// Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Parse decodes data in the given format ("yaml" or "json") and validates
// the result.
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config: %w", err)
		}
	case "json":
		if err := codec.Default.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tag constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
		}
		return &ValidationError{Fields: fields, Err: err}
	}
	return nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Options translates the config into trainer options.
func (c *Config) Options() ([]crossval.Option, error) {
	comp, err := persistence.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MaxWorkers:         int64(c.Workers),
		MemoryLimitBytes:   c.MemoryLimitBytes,
		IOLimitBytesPerSec: c.IOLimitBytesPerSec,
	})

	return []crossval.Option{
		crossval.WithDescription(c.Description),
		crossval.WithLeaveOneOut(c.LeaveOneOut),
		crossval.WithCompression(comp),
		crossval.WithResourceController(rc),
		crossval.WithLogger(logger),
	}, nil
}

// Logger builds the configured logger writing to stderr.
func (c *Config) Logger() (*crossval.Logger, error) {
	var level slog.Level
	if c.LogLevel != "" {
		if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, err
		}
	}
	if c.LogFormat == "json" {
		return crossval.NewJSONLogger(level), nil
	}
	return crossval.NewTextLogger(level), nil
}

// Gates builds the configured gates chained in order. No gates accept
// every pair.
func (c *Config) Gates() (distance.Distance, error) {
	gates := make([]distance.Distance, 0, len(c.Gates))
	for i, g := range c.Gates {
		d, err := distance.New(g.Name, distance.Config{
			Filters:         g.Filters,
			Keys:            g.Keys,
			ExtendedGallery: g.ExtendedGallery,
		})
		if err != nil {
			return nil, fmt.Errorf("gate %d: %w", i, err)
		}
		gates = append(gates, d)
	}
	return distance.Chain(gates...), nil
}

// Selection builds the record filter from Select. It returns nil when no
// selectors are configured, which keeps every record.
func (c *Config) Selection() (*metadata.FilterSet, error) {
	if len(c.Select) == 0 {
		return nil, nil
	}
	filters := make([]metadata.Filter, len(c.Select))
	for i, sel := range c.Select {
		f, err := metadata.NewFilter(sel.Key, metadata.Operator(sel.Op), sel.Value)
		if err != nil {
			return nil, fmt.Errorf("select %d: %w", i, err)
		}
		filters[i] = f
	}
	return metadata.NewFilterSet(filters...), nil
}

// Store opens the configured blob store.
func (c *Config) Store(ctx context.Context) (blobstore.BlobStore, error) {
	st := c.Storage
	switch st.Backend {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "", "local":
		return blobstore.NewLocalStore(st.Path), nil
	case "s3":
		opts := []func(*s3.Options){s3.WithPrefix(st.Prefix)}
		if st.Region != "" {
			opts = append(opts, s3.WithRegion(st.Region))
		}
		if st.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(st.Endpoint))
		}
		store, err := s3.New(ctx, st.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "minio":
		opts := []func(*minio.Options){minio.WithPrefix(st.Prefix)}
		if st.Secure {
			opts = append(opts, minio.WithSecure())
		}
		if st.Region != "" {
			opts = append(opts, minio.WithRegion(st.Region))
		}
		store, err := minio.New(st.Endpoint, st.AccessKey, st.SecretKey, st.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", st.Backend)
	}
}

var global atomic.Pointer[Config]

// Global returns the process-wide config set by SetGlobal, or Default.
func Global() *Config {
	if c := global.Load(); c != nil {
		return c
	}
	return Default()
}

// SetGlobal replaces the process-wide config.
func SetGlobal(c *Config) {
	global.Store(c)
}
