package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()

	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "scan.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Scan.MaxImages)
	assert.Equal(t, 256, cfg.Scan.PerImageTokenOverhead)
	assert.Equal(t, "https://vision.googleapis.com/v1/images:annotate", cfg.Providers.GoogleVision.Endpoint)
	assert.Equal(t, 120, cfg.Providers.GoogleVision.MaxRequestsHour)
	assert.Equal(t, "https://api.mistral.ai/v1/ocr", cfg.Providers.Mistral.Endpoint)
	assert.Equal(t, "pixtral-large-latest", cfg.Providers.Mistral.Model)
	assert.Equal(t, 60, cfg.Providers.Mistral.MaxRequestsHour)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Providers.Claude.Model)
	assert.Equal(t, int64(2048), cfg.Providers.Claude.MaxTokens)
	assert.Equal(t, 30, cfg.Providers.Claude.MaxRequestsHour)
	assert.Equal(t, []string{"eng"}, cfg.Providers.Tesseract.Languages)
	assert.InDelta(t, 0.0015, cfg.Pricing.Vision["google-vision"].PerImage, 0.0001)
	assert.InDelta(t, 0.001, cfg.Pricing.Vision["mistral-ocr"].PerImage, 0.0001)
	assert.InDelta(t, 0.80, cfg.Pricing.LLM["claude-vision"].Input, 0.001)
	assert.InDelta(t, 4.00, cfg.Pricing.LLM["claude-vision"].Output, 0.001)
	assert.Empty(t, cfg.Providers.GoogleVision.Key, "no credentials by default")
	assert.Empty(t, cfg.Routing.TableFile)
}

func TestLoadFromYAML(t *testing.T) {
	chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/scan
log:
  level: debug
  format: console
server:
  port: 9090
scan:
  max_images: 2
providers:
  google_vision:
    key: gv-test-key
routing:
  table_file: routing.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/scan", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Scan.MaxImages)
	assert.Equal(t, "gv-test-key", cfg.Providers.GoogleVision.Key)
	assert.Equal(t, "routing.yaml", cfg.Routing.TableFile)

	// Untouched keys keep their defaults
	assert.Equal(t, "pixtral-large-latest", cfg.Providers.Mistral.Model)
	assert.Equal(t, 256, cfg.Scan.PerImageTokenOverhead)
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCAN_STORE_DRIVER", "postgres")
	t.Setenv("SCAN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", LogConfig{Level: "debug", Format: "console"}, false},
		{"bad level", LogConfig{Level: "shout", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
