package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: inspection-workers
redis:
  address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, SourceFile, cfg.Templates.Source)
	assert.Equal(t, 500, cfg.Images.MaxWidth)
	assert.Equal(t, 300, cfg.Images.MaxHeight)
	assert.InDelta(t, 0.7, cfg.Images.Quality, 1e-9)
	assert.Equal(t, 4, cfg.Images.Concurrency)
	assert.InDelta(t, 8.8, cfg.Placement.CellWidthCm, 1e-9)
	assert.InDelta(t, 5.8, cfg.Placement.CellHeightCm, 1e-9)
	assert.InDelta(t, 37.7952755906, cfg.Placement.PxPerCm, 1e-9)
	assert.Equal(t, SinkFile, cfg.Output.Sink)
	require.NotNil(t, cfg.Templates.NullGetter)
	assert.True(t, *cfg.Templates.NullGetter)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadFromFile_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_TEMPLATE_DIR", "/srv/plantillas")
	path := writeConfig(t, `
templates:
  directory: ${TEST_TEMPLATE_DIR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/plantillas", cfg.Templates.Directory)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("REDIS_ADDRESS", "redis.internal:6380")
	path := writeConfig(t, `
redis:
  address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Address)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown template source", body: "templates:\n  source: ftp\n"},
		{name: "http source without base url", body: "templates:\n  source: http\n"},
		{name: "s3 sink without bucket", body: "output:\n  sink: s3\n"},
		{name: "quality above one", body: "images:\n  quality: 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestValidateForWorkers(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, ValidateForWorkers(cfg))

	cfg.Camunda.BrokerAddress = "zeebe:26500"
	assert.Error(t, ValidateForWorkers(cfg))

	cfg.Redis.Address = "redis:6379"
	assert.NoError(t, ValidateForWorkers(cfg))
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
