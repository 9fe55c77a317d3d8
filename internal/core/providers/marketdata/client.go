// Package marketdata fetches commodity prices from the data.gov.in open data API.
package marketdata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
	"agrosnap-server/internal/platform/observability"
)

const (
	DefaultBaseURL = "https://api.data.gov.in"
	CommodityParam = "filters[commodity]"
)

// Query selects the commodity. HasCommodity false omits the filter, so every
// commodity is returned; an empty Commodity with HasCommodity true is sent as is.
type Query struct {
	Commodity    string
	HasCommodity bool
}

// Client is safe for concurrent use.
type Client struct {
	cfg        config.MarketConfig
	logger     *logging.Logger
	httpClient *resty.Client
}

func NewClient(cfg config.MarketConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		logger.WarnTag("Market", "DATA_GOV_IN_API_KEY is empty, upstream will reject requests")
	}

	httpClient := resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	return &Client{cfg: cfg, logger: logger, httpClient: httpClient}
}

// Prices performs one GET against the configured resource and returns the
// upstream body as JSON. Bodies that are not JSON come back as a JSON string.
func (c *Client) Prices(ctx context.Context, q Query) (body []byte, err error) {
	done := observability.TrackUpstream(ctx, "data.gov.in")
	defer func() { done(err) }()

	params := map[string]string{
		"format": c.format(),
		"limit":  strconv.Itoa(c.limit()),
	}
	if c.cfg.APIKey != "" {
		params["api-key"] = c.cfg.APIKey
	}
	if q.HasCommodity {
		params[CommodityParam] = q.Commodity
	}

	res, err := handleError(c.httpClient.NewRequest().
		SetContext(ctx).
		SetQueryParams(params).
		SetPathParam("resourceId", c.cfg.ResourceID).
		Get("/resource/{resourceId}"))
	if err != nil {
		return nil, err
	}

	c.logger.DebugTag("Market", "data.gov.in answered %d with %d bytes", res.StatusCode(), len(res.Body()))
	return asJSON(res.Body())
}

func (c *Client) format() string {
	if c.cfg.Format == "" {
		return "json"
	}
	return c.cfg.Format
}

func (c *Client) limit() int {
	if c.cfg.Limit <= 0 {
		return 10
	}
	return c.cfg.Limit
}

// handleError turns transport failures and non-2xx answers into typed errors.
// Without it a failing response would carry a nil error.
func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, errors.Wrap(errors.KindUpstreamUnavailable, "marketdata.prices", "data.gov.in unreachable", err)
	}
	if !res.IsSuccess() {
		return res, errors.New(errors.KindUpstreamRejected, "marketdata.prices",
			fmt.Sprintf("request failed: %s (status: %d)", res.Request.Method, res.StatusCode()))
	}
	return res, nil
}

func asJSON(body []byte) ([]byte, error) {
	if sonic.Valid(body) {
		return body, nil
	}
	wrapped, err := sonic.Marshal(string(body))
	if err != nil {
		return nil, errors.Wrap(errors.KindUpstreamMalformed, "marketdata.prices", "could not encode upstream body", err)
	}
	return wrapped, nil
}
