package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lonelypoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
path: structures/NaCl.cif
resolution: 40
marker: He
tie_break: lowest-index
dump_candidates: 10
max_query_workers: 2
s3:
  region: eu-central-1
minio:
  endpoint: localhost:9000
  access_key: minio
  secret_key: minio123
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "structures/NaCl.cif", cfg.Path)
	assert.Equal(t, 40, cfg.Resolution)
	assert.Equal(t, "He", cfg.Marker)
	assert.Equal(t, "lowest-index", cfg.TieBreak)
	assert.Equal(t, 10, cfg.DumpCandidates)
	assert.Equal(t, int64(2), cfg.MaxQueryWorkers)
	assert.Equal(t, "eu-central-1", cfg.S3.Region)
	assert.Equal(t, "localhost:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "minio", cfg.MinIO.AccessKey)

	// Unset keys keep their defaults.
	assert.Equal(t, "lis_", cfg.Tag)
	assert.Equal(t, "kdtree", cfg.Engine)
	assert.Equal(t, 4, cfg.Precision)

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("resolution: [1, 2"), 0o644))
		_, err := LoadConfig(bad)
		assert.Error(t, err)
	})
}

func TestParseVec3(t *testing.T) {
	v, err := parseVec3("0.5, 0.25,1")
	require.NoError(t, err)
	assert.Equal(t, crystal.Vec3{0.5, 0.25, 1}, v)

	v, err = parseVec3("0 0 0.5")
	require.NoError(t, err)
	assert.Equal(t, crystal.Vec3{0, 0, 0.5}, v)

	_, err = parseVec3("1,2")
	assert.Error(t, err)
	_, err = parseVec3("1,b,2")
	assert.Error(t, err)
}

func TestResourceController(t *testing.T) {
	cfg := DefaultConfig()
	assert.Nil(t, cfg.resourceController())

	cfg.MaxQueryWorkers = 2
	ctl := cfg.resourceController()
	require.NotNil(t, ctl)
	slots := ctl.QuerySlots()
	require.NotNil(t, slots)
	assert.True(t, slots.TryAcquire(2))
	assert.False(t, slots.TryAcquire(1))
	slots.Release(2)

	cfg = DefaultConfig()
	cfg.MemoryLimit = 1 << 20
	ctl = cfg.resourceController()
	require.NotNil(t, ctl)
	assert.Nil(t, ctl.QuerySlots())
}

func TestFinderOptions(t *testing.T) {
	var stdout, stderr bytes.Buffer

	cfg := DefaultConfig()
	cfg.ExtraMarker = "0.5,0.5,0.5"
	cfg.MemoryLimit = 1 << 30
	cfg.ViewCommand = "ase gui"
	cfg.DumpCandidates = 3
	opts, err := cfg.finderOptions(&stdout, &stderr, "lis_NaCl.cif.candidates.json")
	require.NoError(t, err)
	assert.NotEmpty(t, opts)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Engine", func(c *Config) { c.Engine = "octree" }},
		{"TieBreak", func(c *Config) { c.TieBreak = "random" }},
		{"LogLevel", func(c *Config) { c.LogLevel = "loud" }},
		{"LogFormat", func(c *Config) { c.LogFormat = "xml" }},
		{"ExtraMarker", func(c *Config) { c.ExtraMarker = "1,2" }},
		{"ViewCommand", func(c *Config) { c.ViewCommand = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			_, err := c.finderOptions(&stdout, &stderr, "")
			assert.Error(t, err)
		})
	}
}
