// Package market serves the mandi price endpoints.
package market

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrosnap-server/internal/core/providers/marketdata"
	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
	httptransport "agrosnap-server/internal/transport/http"
)

const FailureMessage = "Failed to fetch market data"

// PriceSource returns the upstream price payload as JSON bytes.
type PriceSource interface {
	Prices(ctx context.Context, q marketdata.Query) ([]byte, error)
}

type Service struct {
	logger *logging.Logger
	config *config.Config
	source PriceSource
}

func NewService(cfg *config.Config, logger *logging.Logger, source PriceSource) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "market.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "market.new", "logger is required")
	}
	if source == nil {
		return nil, errors.New(errors.KindConfig, "market.new", "price source is required")
	}
	return &Service{logger: logger, config: cfg, source: source}, nil
}

func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.GET("/market-prices", s.handleQuery)
	router.GET("/market-prices/:crop", s.handlePath)
	s.logger.InfoTag("HTTP", "market price routes registered")
	return nil
}

// handleQuery returns prices for the crop query parameter
// @Summary Get mandi prices
// @Description Proxies the data.gov.in commodity price resource
// @Tags Market
// @Produce json
// @Param crop query string false "Commodity name, forwarded verbatim"
// @Success 200 {object} object "Upstream payload"
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /market-prices [get]
func (s *Service) handleQuery(c *gin.Context) {
	crop, ok := c.GetQuery("crop")
	s.respond(c, marketdata.Query{Commodity: crop, HasCommodity: ok})
}

// handlePath returns prices for the crop in the path
// @Summary Get mandi prices for one commodity
// @Tags Market
// @Produce json
// @Param crop path string true "Commodity name"
// @Success 200 {object} object "Upstream payload"
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /market-prices/{crop} [get]
func (s *Service) handlePath(c *gin.Context) {
	s.respond(c, marketdata.Query{Commodity: c.Param("crop"), HasCommodity: true})
}

func (s *Service) respond(c *gin.Context, q marketdata.Query) {
	body, err := s.source.Prices(context.WithoutCancel(c.Request.Context()), q)
	if err != nil {
		s.logger.ErrorTag("Market", "Error fetching market prices: %v (id=%s)", err, httptransport.RequestID(c))
		httptransport.RespondFailure(c, s.config.Server.ErrorMode, FailureMessage, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
