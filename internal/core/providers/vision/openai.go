package vision

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sashabaranov/go-openai"

	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
	"agrosnap-server/internal/platform/observability"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// OpenAI talks to any OpenAI-compatible chat completions endpoint with vision support.
type OpenAI struct {
	cfg    config.VisionConfig
	logger *logging.Logger
	client *openai.Client
}

// NewOpenAI creates an OpenAI provider. cfg.BaseURL points it at a compatible gateway.
func NewOpenAI(cfg config.VisionConfig, logger *logging.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		logger.WarnTag("Vision", "OpenAI API key is empty, calls will be rejected upstream")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	logger.DebugTag("Vision", "OpenAI provider ready: model=%s base_url=%s", cfg.ModelName, clientConfig.BaseURL)
	return &OpenAI{
		cfg:    cfg,
		logger: logger,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (p *OpenAI) Name() string { return config.ProviderOpenAI }

// Analyze sends one user message holding the prompt and the image as a data URL.
func (p *OpenAI) Analyze(ctx context.Context, req Request) (*Response, error) {
	message := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: req.Prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", mimeTypeOr(req.MIMEType), req.ImageBase64),
				},
			},
		},
	}
	return p.complete(ctx, "vision.openai.analyze", message)
}

// Generate sends a text-only prompt.
func (p *OpenAI) Generate(ctx context.Context, prompt string) (*Response, error) {
	return p.complete(ctx, "vision.openai.generate", openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

func (p *OpenAI) complete(ctx context.Context, op string, message openai.ChatCompletionMessage) (resp *Response, err error) {
	done := observability.TrackUpstream(ctx, "openai")
	defer func() { done(err) }()

	callCtx, cancel := callContext(ctx, p.cfg.Timeout)
	defer cancel()

	result, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       p.cfg.ModelName,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: float32(p.cfg.Temperature),
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		return nil, classifyOpenAIError(op, err)
	}
	if len(result.Choices) == 0 {
		return nil, errors.New(errors.KindUpstreamMalformed, op, "no choices in OpenAI response")
	}

	p.logger.InfoTag("Vision", "openai call complete", map[string]interface{}{
		"model":        p.cfg.ModelName,
		"inputTokens":  result.Usage.PromptTokens,
		"outputTokens": result.Usage.CompletionTokens,
	})

	return &Response{
		Provider: config.ProviderOpenAI,
		Model:    p.cfg.ModelName,
		Text:     stripThinkBlocks(result.Choices[0].Message.Content),
		Raw:      result,
	}, nil
}

func classifyOpenAIError(op string, err error) error {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return classifyStatus(op, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return classifyStatus(op, reqErr.HTTPStatusCode, err)
	}
	return classifyStatus(op, 0, err)
}

// stripThinkBlocks drops reasoning sections some compatible models emit before the answer.
func stripThinkBlocks(text string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(text, ""))
}
