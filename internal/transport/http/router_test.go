package httptransport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.PublicDir = t.TempDir()
	cfg.Log.Dir = ""
	return cfg
}

func buildEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	router, err := Build(Options{Config: cfg, Logger: logging.NewNop()})
	require.NoError(t, err)
	router.API.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		if err := BindError("echo", c.ShouldBindJSON(&body)); err != nil {
			RespondFailure(c, cfg.Server.ErrorMode, "echo failed", err)
			return
		}
		c.JSON(http.StatusOK, body)
	})
	return router.Engine
}

func serve(engine http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestBuild_RequiresConfig(t *testing.T) {
	_, err := Build(Options{})
	assert.Error(t, err)
}

func TestRouter_CORS(t *testing.T) {
	engine := buildEngine(t, testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://farmer.example")
	rec := serve(engine, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	preflight := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	preflight.Header.Set("Origin", "https://farmer.example")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec = serve(engine, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRouter_StaticAndNotFound(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.PublicDir, "index.html"), []byte("<h1>AgroSnap</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Server.PublicDir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.PublicDir, "css", "app.css"), []byte("body{}"), 0o644))
	engine := buildEngine(t, cfg)

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AgroSnap")

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}

func TestRouter_RequestID(t *testing.T) {
	engine := buildEngine(t, testConfig(t))

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec = serve(engine, req)
	assert.Equal(t, "client-supplied", rec.Header().Get(RequestIDHeader))
}

func TestRouter_MetricsAndDocs(t *testing.T) {
	engine := buildEngine(t, testConfig(t))
	serve(engine, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/analyze")
	assert.Contains(t, paths, "/market-prices")

	rec = serve(engine, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/openapi.json")
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Observability.MetricsEnabled = false
	rec := serve(buildEngine(t, cfg), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_BodyLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.BodyLimit = 64
	engine := buildEngine(t, cfg)

	small := httptest.NewRequest(http.MethodPost, "/api/echo", jsonBody(`{"a":1}`))
	rec := serve(engine, small)
	assert.Equal(t, http.StatusOK, rec.Code)

	big := httptest.NewRequest(http.MethodPost, "/api/echo", jsonBody(fmt.Sprintf(`{"a":"%0100d"}`, 0)))
	rec = serve(engine, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"request entity too large"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		mode string
		kind errors.Kind
		want int
	}{
		{config.ErrorModeLegacy, errors.KindInvalidInput, http.StatusInternalServerError},
		{config.ErrorModeLegacy, errors.KindUpstreamUnavailable, http.StatusInternalServerError},
		{config.ErrorModeLegacy, errors.KindPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{config.ErrorModeDetailed, errors.KindInvalidInput, http.StatusBadRequest},
		{config.ErrorModeDetailed, errors.KindUpstreamUnavailable, http.StatusServiceUnavailable},
		{config.ErrorModeDetailed, errors.KindUpstreamRejected, http.StatusBadGateway},
		{config.ErrorModeDetailed, errors.KindUpstreamMalformed, http.StatusBadGateway},
		{config.ErrorModeDetailed, errors.KindPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{config.ErrorModeDetailed, errors.KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.mode, tt.kind))
		})
	}
}

func TestBindError(t *testing.T) {
	assert.Nil(t, BindError("op", nil))
	assert.True(t, errors.IsKind(BindError("op", fmt.Errorf("bad json")), errors.KindInvalidInput))
	assert.True(t, errors.IsKind(BindError("op", &http.MaxBytesError{Limit: 10}), errors.KindPayloadTooLarge))
}
