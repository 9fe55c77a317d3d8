package httptransport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"

	_ "agrosnap-server/internal/docs"
	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/logging"
	"agrosnap-server/internal/platform/observability"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8" />
		<title>AgroSnap API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

// Options configures the HTTP router builder.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
	// StaticRoot overrides Config.Server.PublicDir.
	StaticRoot string
}

// Router bundles together the gin engine and the /api route group.
type Router struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
}

// Build constructs a gin engine pre-configured with recovery, request ids,
// logging, metrics, CORS, the body limit and the static file server.
func Build(opts Options) (*Router, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("http router requires config")
	}
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	if gin.Mode() != gin.TestMode {
		if strings.EqualFold(cfg.Log.Level, "debug") {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(loggingMiddleware(logger))
	engine.Use(observabilityMiddleware())

	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}

	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH", "HEAD"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
		ExposeHeaders:   []string{"Content-Length", RequestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	engine.Use(bodyLimitMiddleware(cfg.Server.BodyLimit))

	staticRoot := opts.StaticRoot
	if staticRoot == "" {
		staticRoot = cfg.Server.PublicDir
	}
	if staticRoot != "" {
		engine.Use(static.Serve("/", static.LocalFile(staticRoot, false)))
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Observability.MetricsEnabled {
		metricsPath := cfg.Observability.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		engine.GET(metricsPath, gin.WrapH(observability.Handler()))
	}

	engine.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "failed to render OpenAPI document: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate openapi spec"})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	engine.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found"})
			return
		}
		c.String(http.StatusNotFound, "Not Found")
	})

	return &Router{
		Engine: engine,
		API:    engine.Group("/api"),
	}, nil
}
