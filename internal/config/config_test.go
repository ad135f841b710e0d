package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://branchenbuch.meinestadt.de", cfg.Directory.BaseURL)
	assert.Equal(t, "unterschleissheim", cfg.Directory.Location)
	assert.Equal(t, "Deutschland", cfg.Directory.Country)
	assert.Equal(t, "insomnia/2023.5.8", cfg.Fetch.UserAgent)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, 100, cfg.Fetch.Concurrency)
	assert.False(t, cfg.Fetch.Strict)
	assert.Equal(t, ";", cfg.Export.TemplateDelimiter)
	assert.Equal(t, ",", cfg.Export.OutputDelimiter)
	assert.Equal(t, "Kontakte_rev7.csv", cfg.Export.OutputPath)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
directory:
  location: muenchen
fetch:
  concurrency: 8
  strict: true
export:
  format: xlsx
  output_path: out.xlsx
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "muenchen", cfg.Directory.Location)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.True(t, cfg.Fetch.Strict)
	assert.Equal(t, "xlsx", cfg.Export.Format)
	assert.Equal(t, "out.xlsx", cfg.Export.OutputPath)
	// Defaults still apply for unset values
	assert.Equal(t, 15, cfg.Fetch.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("fetch:\n  concurrency: 8\n"), 0644))
	t.Setenv("KONTAKTE_FETCH_CONCURRENCY", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Fetch.Concurrency)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("KONTAKTE_DIRECTORY_LOCATION=garching\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("KONTAKTE_DIRECTORY_LOCATION") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "garching", cfg.Directory.Location)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load()
	require.NoError(t, err)

	bad := *cfg
	bad.Fetch.Concurrency = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Export.Format = "parquet"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Export.OutputDelimiter = ";;"
	assert.Error(t, bad.Validate())
}
