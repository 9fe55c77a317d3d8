package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
)

func TestTrackUpstream_Outcomes(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("test-upstream", "ok"))
	beforeRejected := testutil.ToFloat64(upstreamRequests.WithLabelValues("test-upstream", "upstream_rejected"))

	TrackUpstream(context.Background(), "test-upstream")(nil)
	TrackUpstream(context.Background(), "test-upstream")(
		platformerrors.Wrap(platformerrors.KindUpstreamRejected, "op", "status 403", errors.New("forbidden")),
	)

	assert.Equal(t, before+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("test-upstream", "ok")))
	assert.Equal(t, beforeRejected+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("test-upstream", "upstream_rejected")))
}

func TestObserveHTTP_ExposedByHandler(t *testing.T) {
	ObserveHTTP(http.MethodGet, "/api/market-prices", http.StatusOK, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/market-prices",status="200"}`)
}

func TestStartSpan_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false}, logging.NewNop())
	require.NoError(t, err)
	defer shutdown(context.Background())

	assert.False(t, Enabled())
	ctx := context.Background()
	got, end := StartSpan(ctx, "http.server", "/api/analyze")
	assert.Equal(t, ctx, got)
	end(nil)
}
