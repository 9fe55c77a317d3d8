package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoader_Defaults(t *testing.T) {
	res, err := NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "missing.yaml")).
		WithEnv(envMap(nil)).
		Load()
	require.NoError(t, err)

	cfg := res.Config
	assert.Equal(t, "defaults", res.Path)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, int64(10*1024*1024), cfg.Server.BodyLimit)
	assert.Equal(t, ErrorModeLegacy, cfg.Server.ErrorMode)
	assert.Equal(t, ProviderGemini, cfg.Vision.Provider)
	assert.Equal(t, MapperPlaceholder, cfg.Vision.Mapper)
	assert.Equal(t, 10, cfg.Market.Limit)
	assert.Equal(t, "json", cfg.Market.Format)
	assert.Len(t, res.Warnings, 2)
}

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8080
  error_mode: detailed
  shutdown_timeout: 3s
log:
  log_level: "DEBUG"
  log_dir: "/tmp/logs"
  log_file: "test.log"
vision:
  provider: openai
  model_name: gpt-4o-mini
  mapper: structured
  timeout: 45s
market:
  limit: 25
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0o644))

	res, err := NewLoader().
		WithDotEnv(false).
		WithEnv(envMap(map[string]string{
			"CONFIG_PATH":    configFile,
			"OPENAI_API_KEY": "sk-test",
			"GOOGLE_API_KEY": "ignored-for-openai",
		})).
		Load()
	require.NoError(t, err)

	cfg := res.Config
	assert.Equal(t, configFile, res.Path)
	assert.Equal(t, "127.0.0.1", cfg.Server.IP)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ErrorModeDetailed, cfg.Server.ErrorMode)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, ProviderOpenAI, cfg.Vision.Provider)
	assert.Equal(t, "sk-test", cfg.Vision.APIKey)
	assert.Equal(t, MapperStructured, cfg.Vision.Mapper)
	assert.Equal(t, 45*time.Second, cfg.Vision.Timeout)
	assert.Equal(t, 25, cfg.Market.Limit)
	// untouched sections keep their defaults
	assert.Equal(t, DefaultResourceID, cfg.Market.ResourceID)
}

func TestLoader_EnvOverrides(t *testing.T) {
	res, err := NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "missing.yaml")).
		WithEnv(envMap(map[string]string{
			"PORT":                "4100",
			"GOOGLE_API_KEY":      "g-key",
			"DATA_GOV_IN_API_KEY": "d-key",
		})).
		Load()
	require.NoError(t, err)

	assert.Equal(t, 4100, res.Config.Server.Port)
	assert.Equal(t, "g-key", res.Config.Vision.APIKey)
	assert.Equal(t, "d-key", res.Config.Market.APIKey)
	assert.Empty(t, res.Warnings)
}

func TestLoader_BadPort(t *testing.T) {
	_, err := NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "missing.yaml")).
		WithEnv(envMap(map[string]string{"PORT": "abc"})).
		Load()
	require.Error(t, err)
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero body limit",
			mutate:  func(c *Config) { c.Server.BodyLimit = 0 },
			wantErr: true,
		},
		{
			name:    "unknown error mode",
			mutate:  func(c *Config) { c.Server.ErrorMode = "verbose" },
			wantErr: true,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Vision.Provider = "claude" },
			wantErr: true,
		},
		{
			name:    "unknown mapper",
			mutate:  func(c *Config) { c.Vision.Mapper = "magic" },
			wantErr: true,
		},
		{
			name:    "missing resource id",
			mutate:  func(c *Config) { c.Market.ResourceID = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := loader.validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
