package testing

import (
	"testing"

	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/logging"
)

// SetupTestConfig returns the default configuration with file logging disabled
// and dummy credentials, ready to be pointed at fake upstreams.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Server.PublicDir = t.TempDir()
	cfg.Log.Level = "DEBUG"
	cfg.Log.Dir = ""
	cfg.Vision.APIKey = "test-google-key"
	cfg.Market.APIKey = "test-data-gov-key"

	return cfg
}

// SetupTestLogger returns a logger that only writes to the discarded console.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger := logging.NewNop()
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}
