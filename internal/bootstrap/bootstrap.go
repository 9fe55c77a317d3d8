package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"agrosnap-server/internal/core/providers/marketdata"
	"agrosnap-server/internal/core/providers/vision"
	platformconfig "agrosnap-server/internal/platform/config"
	platformerrors "agrosnap-server/internal/platform/errors"
	platformlogging "agrosnap-server/internal/platform/logging"
	platformobservability "agrosnap-server/internal/platform/observability"
	httptransport "agrosnap-server/internal/transport/http"
	httpanalyze "agrosnap-server/internal/transport/http/analyze"
	httpmarket "agrosnap-server/internal/transport/http/market"
	httptranslate "agrosnap-server/internal/transport/http/translate"
)

const shutdownGrace = 15 * time.Second

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	loader                *platformconfig.Loader
	config                *platformconfig.Config
	configPath            string
	configWarnings        []string
	logger                *platformlogging.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	visionProvider        vision.Provider
	marketClient          *marketdata.Client
}

// Run drives the whole service lifecycle: configuration, dependencies,
// the HTTP server and graceful shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	defer logger.Close()

	logBootstrapGraph(steps, logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("Bootstrap", "observability did not shut down cleanly: %v", err)
			}
		}()
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return fmt.Errorf("start http server: %w", err)
	}

	return waitForShutdown(signalCtx, groupCtx, cancel, logger, group)
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	for _, step := range steps {
		if len(step.DependsOn) == 0 {
			logger.DebugTag("Bootstrap", "%s", step.Title)
			continue
		}
		logger.DebugTag("Bootstrap", "%s (after %s)", step.Title, strings.Join(step.DependsOn, ", "))
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph lists the startup steps in execution order.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load-runtime",
			Title:   "Load runtime configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load-runtime"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "providers:init-vision",
			Title:     "Initialise vision provider",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindConfig,
			Execute:   initVisionStep,
		},
		{
			ID:        "providers:init-market",
			Title:     "Initialise market data client",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindConfig,
			Execute:   initMarketStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	loader := state.loader
	if loader == nil {
		loader = platformconfig.NewLoader()
	}
	result, err := loader.Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	state.configWarnings = result.Warnings
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
		Format:   state.config.Log.Format,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialize logging provider", err)
	}
	state.logger = logger

	logger.InfoTag("Bootstrap", "logging ready [%s] config=%s", state.config.Log.Level, state.configPath)
	for _, warning := range state.configWarnings {
		logger.WarnTag("Config", "%s", warning)
	}
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: state.config.Observability.Enabled || strings.EqualFold(state.config.Log.Level, "debug"),
	}
	shutdown, err := platformobservability.Setup(ctx, cfg, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

func initVisionStep(ctx context.Context, state *appState) error {
	provider, err := vision.NewProvider(ctx, state.config.Vision, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "providers:init-vision", "failed to create vision provider", err)
	}
	state.visionProvider = provider
	state.logger.InfoTag("Vision", "provider %s model=%s mapper=%s", provider.Name(), state.config.Vision.ModelName, state.config.Vision.Mapper)
	return nil
}

func initMarketStep(_ context.Context, state *appState) error {
	state.marketClient = marketdata.NewClient(state.config.Market, state.logger)
	return nil
}

// buildHTTPHandler wires every API service onto a fresh router.
func buildHTTPHandler(ctx context.Context, state *appState) (http.Handler, error) {
	router, err := httptransport.Build(httptransport.Options{
		Config: state.config,
		Logger: state.logger,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:build-router", "failed to build router", err)
	}

	analyzeService, err := httpanalyze.NewService(state.config, state.logger, state.visionProvider)
	if err != nil {
		return nil, err
	}
	marketService, err := httpmarket.NewService(state.config, state.logger, state.marketClient)
	if err != nil {
		return nil, err
	}
	translateService, err := httptranslate.NewService(state.config, state.logger, state.visionProvider)
	if err != nil {
		return nil, err
	}

	for _, register := range []func(context.Context, *gin.RouterGroup) error{
		analyzeService.Register,
		marketService.Register,
		translateService.Register,
	} {
		if err := register(ctx, router.API); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:register", "failed to register routes", err)
		}
	}
	return router.Engine, nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	handler, err := buildHTTPHandler(groupCtx, state)
	if err != nil {
		return nil, err
	}

	cfg := state.config
	logger := state.logger
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.IP, strconv.Itoa(cfg.Server.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "Server running on port %d", cfg.Server.Port)
		logger.InfoTag("HTTP", "API docs: http://localhost:%d/docs", cfg.Server.Port)

		go func() {
			<-groupCtx.Done()
			timeout := cfg.Server.ShutdownTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "HTTP server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "HTTP server stopped gracefully")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "HTTP server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

// waitForShutdown blocks until a signal arrives or a server goroutine fails,
// then cancels the group and waits for it to drain.
func waitForShutdown(
	signalCtx context.Context,
	groupCtx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	select {
	case <-signalCtx.Done():
		logger.InfoTag("Bootstrap", "received %v, cleaning up", context.Cause(signalCtx))
	case <-groupCtx.Done():
		logger.WarnTag("Bootstrap", "server stopped: %v", context.Cause(groupCtx))
	}

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("Bootstrap", "shutdown finished with error: %v", err)
			return err
		}
		logger.InfoTag("Bootstrap", "all services stopped")
	case <-time.After(shutdownGrace):
		logger.ErrorTag("Bootstrap", "shutdown timed out, exiting")
		return errors.New("shutdown timed out")
	}
	return nil
}
