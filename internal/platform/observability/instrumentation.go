package observability

import (
	"context"
	"time"

	"agrosnap-server/internal/platform/errors"
)

// Enabled reports whether observability has been toggled on.
func Enabled() bool {
	_, cfg := currentLogger()
	return cfg.Enabled
}

// StartSpan records a lightweight span lifecycle around an operation.
func StartSpan(ctx context.Context, component, operation string) (context.Context, func(error)) {
	logger, cfg := currentLogger()
	if logger == nil || !cfg.Enabled {
		return ctx, func(error) {}
	}

	start := time.Now()
	logger.Debug("obs span start", map[string]interface{}{
		"component": component,
		"operation": operation,
	})

	return ctx, func(err error) {
		fields := map[string]interface{}{
			"component": component,
			"operation": operation,
			"duration":  time.Since(start).String(),
		}
		if err != nil {
			fields["error"] = err.Error()
			logger.Error("obs span end", fields)
			return
		}
		logger.Debug("obs span end", fields)
	}
}

// TrackUpstream measures one outbound call. The returned func records the
// outcome derived from the call's error.
func TrackUpstream(ctx context.Context, upstream string) func(error) {
	_, end := StartSpan(ctx, "upstream", upstream)
	start := time.Now()
	return func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = string(errors.KindOf(err))
		}
		upstreamRequests.WithLabelValues(upstream, outcome).Inc()
		upstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
		end(err)
	}
}
