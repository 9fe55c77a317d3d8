package observability

import (
	"context"
	"sync"

	"agrosnap-server/internal/platform/logging"
)

// Config captures observability toggles.
type Config struct {
	// Enabled turns on span logging. Prometheus collectors are always registered.
	Enabled bool
}

// ShutdownFunc allows callers to tear down any observability exporters.
type ShutdownFunc func(context.Context) error

var (
	loggerMu             sync.RWMutex
	instrumentationLog   *logging.Logger
	instrumentationState Config
)

func currentLogger() (*logging.Logger, Config) {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return instrumentationLog, instrumentationState
}

// Setup installs the logger used for spans.
func Setup(ctx context.Context, cfg Config, logger *logging.Logger) (ShutdownFunc, error) {
	loggerMu.Lock()
	instrumentationLog = logger
	instrumentationState = cfg
	loggerMu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoTag("OBSERVABILITY", "span logging enabled")
		} else {
			logger.InfoTag("OBSERVABILITY", "span logging disabled")
		}
	}
	return func(context.Context) error {
		loggerMu.Lock()
		instrumentationLog = nil
		instrumentationState = Config{}
		loggerMu.Unlock()
		return nil
	}, nil
}
