// Package translate serves POST /api/translate.
package translate

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agrosnap-server/internal/core/providers/vision"
	"agrosnap-server/internal/domain/analysis"
	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
	httptransport "agrosnap-server/internal/transport/http"
)

const FailureMessage = "Failed to translate text"

// Request is accepted as JSON or as a urlencoded form.
type Request struct {
	Text           string `json:"text" form:"text"`
	TargetLanguage string `json:"target_language" form:"target_language"`
}

type Response struct {
	Translation string `json:"translation"`
}

type Service struct {
	logger   *logging.Logger
	config   *config.Config
	provider vision.Provider
}

func NewService(cfg *config.Config, logger *logging.Logger, provider vision.Provider) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "translate.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "translate.new", "logger is required")
	}
	if provider == nil {
		return nil, errors.New(errors.KindConfig, "translate.new", "provider is required")
	}
	return &Service{logger: logger, config: cfg, provider: provider}, nil
}

func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.POST("/translate", s.handlePost)
	return nil
}

// handlePost translates text
// @Summary Translate text
// @Tags Translation
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body Request true "Text and target language"
// @Success 200 {object} Response
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /translate [post]
func (s *Service) handlePost(c *gin.Context) {
	mode := s.config.Server.ErrorMode

	var req Request
	if err := httptransport.BindError("translate.bind", c.ShouldBind(&req)); err != nil {
		s.logger.WarnTag("Translate", "rejecting body: %v", err)
		httptransport.RespondFailure(c, mode, FailureMessage, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.TargetLanguage) == "" {
		err := errors.New(errors.KindInvalidInput, "translate.validate", "text and target_language are required")
		s.logger.WarnTag("Translate", "%v", err)
		httptransport.RespondFailure(c, mode, FailureMessage, err)
		return
	}

	resp, err := s.provider.Generate(
		context.WithoutCancel(c.Request.Context()),
		analysis.TranslatePrompt(req.Text, req.TargetLanguage),
	)
	if err != nil {
		s.logger.ErrorTag("Translate", "Error translating text: %v (id=%s)", err, httptransport.RequestID(c))
		httptransport.RespondFailure(c, mode, FailureMessage, err)
		return
	}

	c.JSON(http.StatusOK, Response{Translation: strings.TrimSpace(resp.Text)})
}
