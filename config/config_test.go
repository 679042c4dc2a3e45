package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crossval"
	"github.com/hupe1980/crossval/blobstore"
	"github.com/hupe1980/crossval/distance"
	"github.com/hupe1980/crossval/metadata"
	"github.com/hupe1980/crossval/record"
)

const sample = `
description: Center
leave_one_out: true
workers: 2
memory_limit_bytes: 1048576
compression: zstd
log_level: debug
log_format: json
gates:
  - name: CrossValidate
    extended_gallery: true
  - name: Filter
    filters:
      Gender: [M]
  - name: Metadata
    keys: [Age]
select:
  - key: Age
    op: gte
    value: 18
  - key: Gender
    op: in
    value: M,F
storage:
  backend: memory
`

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(sample), "yaml")
	require.NoError(t, err)

	assert.Equal(t, "Center", cfg.Description)
	assert.True(t, cfg.LeaveOneOut)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, int64(1<<20), cfg.MemoryLimitBytes)
	require.Len(t, cfg.Gates, 3)
	assert.True(t, cfg.Gates[0].ExtendedGallery)
	assert.Equal(t, []string{"M"}, cfg.Gates[1].Filters["Gender"])
	assert.Equal(t, []Selector{{Key: "Age", Op: "gte", Value: "18"}, {Key: "Gender", Op: "in", Value: "M,F"}}, cfg.Select)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestParseJSON(t *testing.T) {
	cfg, err := Parse([]byte(`{"description":"Scale","workers":3,"gates":[{"name":"Metadata","keys":["Age"]}]}`), "json")
	require.NoError(t, err)
	assert.Equal(t, "Scale", cfg.Description)
	assert.Equal(t, 3, cfg.Workers)
	require.Len(t, cfg.Gates, 1)
	assert.Equal(t, "Metadata", cfg.Gates[0].Name)

	// Unset fields keep their defaults.
	assert.Equal(t, "none", cfg.Compression)
	assert.Equal(t, "local", cfg.Storage.Backend)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{name: "MissingDescription", input: "description: ''", field: "Config.Description"},
		{name: "NegativeWorkers", input: "workers: -1", field: "Config.Workers"},
		{name: "Compression", input: "compression: gzip", field: "Config.Compression"},
		{name: "GateName", input: "gates: [{name: L2}]", field: "Config.Gates[0].Name"},
		{name: "SelectOp", input: "select: [{key: Age, op: between}]", field: "Config.Select[0].Op"},
		{name: "SelectKey", input: "select: [{op: eq, value: x}]", field: "Config.Select[0].Key"},
		{name: "S3Bucket", input: "storage: {backend: s3}", field: "Config.Storage.Bucket"},
		{name: "MinioEndpoint", input: "storage: {backend: minio, bucket: b}", field: "Config.Storage.Endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "yaml")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Contains(t, verr.Fields[0], tt.field)
		})
	}

	_, err := Parse([]byte("description: ["), "yaml")
	assert.Error(t, err)

	_, err = Parse([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "crossval.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sample), 0o600))
	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Center", cfg.Description)

	jsonPath := filepath.Join(dir, "crossval.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"description":"Identity"}`), 0o600))
	cfg, err = Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "Identity", cfg.Description)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(sample), "yaml")
	require.NoError(t, err)

	data, err := cfg.Marshal()
	require.NoError(t, err)

	again, err := Parse(data, "yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestOptions(t *testing.T) {
	cfg, err := Parse([]byte(sample), "yaml")
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)

	tr := crossval.New(opts...)
	assert.Equal(t, "Center", tr.Description())

	cfg.LogLevel = "verbose"
	_, err = cfg.Options()
	assert.Error(t, err)
}

func TestGates(t *testing.T) {
	cfg, err := Parse([]byte(sample), "yaml")
	require.NoError(t, err)

	gate, err := cfg.Gates()
	require.NoError(t, err)

	probe := record.New(nil).Partition(1).
		With("Gender", metadata.String("M")).
		With("Age", metadata.Int(30)).
		Build()
	gallery := record.New(nil).Partition(1).With("Age", metadata.String("(20, 40)")).Build()
	other := record.New(nil).Partition(2).With("Age", metadata.String("(20, 40)")).Build()

	assert.Equal(t, distance.Accept, gate.Compare(probe, gallery))
	assert.Equal(t, distance.Reject, gate.Compare(probe, other))

	empty := &Config{}
	gate, err = empty.Gates()
	require.NoError(t, err)
	assert.Equal(t, distance.Accept, gate.Compare(probe, other))
}

func TestSelection(t *testing.T) {
	cfg, err := Parse([]byte(sample), "yaml")
	require.NoError(t, err)

	fs, err := cfg.Selection()
	require.NoError(t, err)
	require.Len(t, fs.Filters, 2)

	ds := record.Dataset{
		record.New(nil).With("Age", metadata.Float(30)).With("Gender", metadata.String("M")).Build(),
		record.New(nil).With("Age", metadata.Float(12)).With("Gender", metadata.String("F")).Build(),
		record.New(nil).With("Age", metadata.Float(40)).With("Gender", metadata.String("X")).Build(),
		record.New(nil).With("Gender", metadata.String("F")).Build(),
	}
	selected := ds.Select(fs)
	require.Len(t, selected, 1)
	assert.Equal(t, 30, selected[0].Metadata.GetInt("Age", 0))

	fs, err = Default().Selection()
	require.NoError(t, err)
	assert.Nil(t, fs)
	assert.Len(t, ds.Select(fs), 4)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Storage = Storage{Backend: "memory"}
	store, err := cfg.Store(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.MemoryStore{}, store)

	cfg.Storage = Storage{Backend: "local", Path: t.TempDir()}
	store, err = cfg.Store(ctx)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)

	cfg.Storage = Storage{Backend: "ftp"}
	_, err = cfg.Store(ctx)
	assert.Error(t, err)
}

func TestGlobal(t *testing.T) {
	assert.Equal(t, Default(), Global())

	cfg := Default()
	cfg.Description = "Scale"
	SetGlobal(cfg)
	t.Cleanup(func() { SetGlobal(nil) })

	assert.Equal(t, "Scale", Global().Description)
}
