package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
)

// Request is one multimodal call: an instruction plus one inline image.
type Request struct {
	Prompt      string
	ImageBase64 string
	// MIMEType is what the image is declared as upstream, whatever its real encoding.
	MIMEType string
}

// Response is the provider answer in a provider-neutral shape.
type Response struct {
	Provider string
	Model    string
	Text     string
	// Raw is the decoded provider payload, kept for mappers that need more than text.
	Raw any
}

// Provider is an AI backend able to look at an image and to answer plain text prompts.
// Each call performs exactly one upstream request.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, req Request) (*Response, error)
	Generate(ctx context.Context, prompt string) (*Response, error)
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.VisionConfig, logger *logging.Logger) (Provider, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderGemini:
		return NewGemini(ctx, cfg, logger)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg, logger)
	default:
		return nil, errors.New(errors.KindConfig, "vision.new", fmt.Sprintf("unsupported vision provider: %s", cfg.Provider))
	}
}

// callContext bounds ctx by timeout when one is configured.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return ctx, func() {}
}

func mimeTypeOr(mime string) string {
	if mime == "" {
		return "image/jpeg"
	}
	return mime
}

// classifyStatus maps an upstream HTTP status onto an error kind.
func classifyStatus(op string, status int, err error) error {
	if status == 0 {
		return errors.Wrap(errors.KindUpstreamUnavailable, op, "upstream unreachable", err)
	}
	return errors.Wrap(errors.KindUpstreamRejected, op, fmt.Sprintf("upstream returned status %d", status), err)
}
