package vision

import (
	"context"
	"encoding/base64"
	stderrors "errors"

	"google.golang.org/genai"

	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
	"agrosnap-server/internal/platform/logging"
	"agrosnap-server/internal/platform/observability"
)

// Gemini talks to the Gemini API generateContent endpoint.
type Gemini struct {
	cfg    config.VisionConfig
	logger *logging.Logger
	client *genai.Client
	// initErr is returned by every call when the client could not be built
	// (typically a missing API key). The server still starts.
	initErr error
}

// NewGemini creates a Gemini provider. cfg.BaseURL overrides the API host.
func NewGemini(ctx context.Context, cfg config.VisionConfig, logger *logging.Logger) (*Gemini, error) {
	g := &Gemini{cfg: cfg, logger: logger}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		if cfg.APIKey == "" {
			g.initErr = errors.Wrap(errors.KindUpstreamUnavailable, "vision.gemini.init", "gemini client unavailable", err)
			logger.WarnTag("Vision", "Gemini client not initialised: %v", err)
			return g, nil
		}
		return nil, errors.Wrap(errors.KindConfig, "vision.gemini.init", "failed to create Gemini client", err)
	}
	g.client = client

	logger.DebugTag("Vision", "Gemini provider ready: model=%s", cfg.ModelName)
	return g, nil
}

func (g *Gemini) Name() string { return config.ProviderGemini }

// Analyze sends the prompt followed by the image as inline data.
func (g *Gemini) Analyze(ctx context.Context, req Request) (*Response, error) {
	image, err := decodeImage(req.ImageBase64)
	if err != nil {
		return nil, errors.Wrap(errors.KindInvalidInput, "vision.gemini.analyze", "image is not valid base64", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
		{InlineData: &genai.Blob{Data: image, MIMEType: mimeTypeOr(req.MIMEType)}},
	}
	return g.generate(ctx, "vision.gemini.analyze", parts, false)
}

// decodeImage accepts the standard and URL-safe alphabets, padded or not,
// like the Gemini JSON API does for bytes fields.
func decodeImage(data string) ([]byte, error) {
	var firstErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		image, err := enc.DecodeString(data)
		if err == nil {
			return image, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// Generate sends a text-only prompt.
func (g *Gemini) Generate(ctx context.Context, prompt string) (*Response, error) {
	return g.generate(ctx, "vision.gemini.generate", []*genai.Part{genai.NewPartFromText(prompt)}, true)
}

// generate performs one generateContent call. With requireText false an
// answer without candidates (a blocked prompt, say) is still a success and
// comes back with empty Text.
func (g *Gemini) generate(ctx context.Context, op string, parts []*genai.Part, requireText bool) (resp *Response, err error) {
	if g.initErr != nil {
		return nil, g.initErr
	}

	done := observability.TrackUpstream(ctx, "gemini")
	defer func() { done(err) }()

	callCtx, cancel := callContext(ctx, g.cfg.Timeout)
	defer cancel()

	var genConfig *genai.GenerateContentConfig
	if g.cfg.Temperature > 0 {
		temperature := float32(g.cfg.Temperature)
		genConfig = &genai.GenerateContentConfig{Temperature: &temperature}
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	result, err := g.client.Models.GenerateContent(callCtx, g.cfg.ModelName, contents, genConfig)
	if err != nil {
		var apiErr genai.APIError
		if stderrors.As(err, &apiErr) {
			return nil, classifyStatus(op, apiErr.Code, err)
		}
		var apiErrPtr *genai.APIError
		if stderrors.As(err, &apiErrPtr) {
			return nil, classifyStatus(op, apiErrPtr.Code, err)
		}
		return nil, classifyStatus(op, 0, err)
	}

	hasContent := result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil
	if !hasContent && requireText {
		return nil, errors.New(errors.KindUpstreamMalformed, op, "no candidates in Gemini response")
	}

	fields := map[string]interface{}{"model": g.cfg.ModelName}
	if !hasContent {
		fields["blockReason"] = blockReason(result)
	}
	if result != nil && result.UsageMetadata != nil {
		fields["inputTokens"] = result.UsageMetadata.PromptTokenCount
		fields["outputTokens"] = result.UsageMetadata.CandidatesTokenCount
	}
	g.logger.InfoTag("Vision", "gemini call complete", fields)

	text := ""
	if hasContent {
		text = result.Text()
	}
	return &Response{
		Provider: config.ProviderGemini,
		Model:    g.cfg.ModelName,
		Text:     text,
		Raw:      result,
	}, nil
}

func blockReason(result *genai.GenerateContentResponse) string {
	if result == nil || result.PromptFeedback == nil {
		return ""
	}
	return string(result.PromptFeedback.BlockReason)
}
