// Package analyze serves POST /api/analyze.
package analyze

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrosnap-server/internal/core/providers/vision"
	"agrosnap-server/internal/domain/analysis"
	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
	httptransport "agrosnap-server/internal/transport/http"
)

const FailureMessage = "Failed to analyze image"

// Request is the analyze body. Image is raw base64 without a data URL prefix.
type Request struct {
	Image    string `json:"image"`
	Language string `json:"language"`
}

// Service is the HTTP face of crop image analysis.
type Service struct {
	logger   *logging.Logger
	config   *config.Config
	provider vision.Provider
}

func NewService(cfg *config.Config, logger *logging.Logger, provider vision.Provider) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "analyze.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "analyze.new", "logger is required")
	}
	if provider == nil {
		return nil, errors.New(errors.KindConfig, "analyze.new", "vision provider is required")
	}
	return &Service{logger: logger, config: cfg, provider: provider}, nil
}

// Register mounts the analyze route on the /api group.
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.POST("/analyze", s.handlePost)
	s.logger.InfoTag("HTTP", "analyze route registered (provider=%s mapper=%s)", s.provider.Name(), s.config.Vision.Mapper)
	return nil
}

// handlePost analyzes one crop image
// @Summary Analyze a crop image
// @Description Sends a base64 crop photo to the vision model and returns the crop report
// @Tags Analysis
// @Accept json
// @Produce json
// @Param request body Request true "Image and response language"
// @Success 200 {object} analysis.Result
// @Failure 413 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /analyze [post]
func (s *Service) handlePost(c *gin.Context) {
	mode := s.config.Server.ErrorMode

	var req Request
	if err := httptransport.BindError("analyze.bind", c.ShouldBindJSON(&req)); err != nil {
		s.logger.WarnTag("Analyze", "rejecting body: %v", err)
		httptransport.RespondFailure(c, mode, FailureMessage, err)
		return
	}
	if req.Image == "" || req.Language == "" {
		err := errors.New(errors.KindInvalidInput, "analyze.validate", "image and language are required")
		s.logger.WarnTag("Analyze", "%v", err)
		httptransport.RespondFailure(c, mode, FailureMessage, err)
		return
	}

	// The upstream call outlives a disconnected client.
	ctx := context.WithoutCancel(c.Request.Context())

	resp, err := s.provider.Analyze(ctx, vision.Request{
		Prompt:      analysis.Prompt(s.config.Vision.Mapper, req.Language),
		ImageBase64: req.Image,
		MIMEType:    s.config.Vision.MIMEType,
	})
	if err != nil {
		s.logger.ErrorTag("Analyze", "Error analyzing image: %v (id=%s)", err, httptransport.RequestID(c))
		httptransport.RespondFailure(c, mode, FailureMessage, err)
		return
	}

	result, err := analysis.Map(s.config.Vision.Mapper, resp)
	if err != nil {
		s.logger.ErrorTag("Analyze", "Error mapping analysis: %v (id=%s)", err, httptransport.RequestID(c))
		httptransport.RespondFailure(c, mode, FailureMessage, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
