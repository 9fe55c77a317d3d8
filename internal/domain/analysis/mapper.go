package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"agrosnap-server/internal/core/providers/vision"
	"agrosnap-server/internal/platform/config"
	"agrosnap-server/internal/platform/errors"
)

const (
	ModePlaceholder = config.MapperPlaceholder
	ModeStructured  = config.MapperStructured
)

// Map converts a provider response into a Result. Placeholder mode ignores the
// response entirely.
func Map(mode string, resp *vision.Response) (*Result, error) {
	if mode != ModeStructured {
		return Placeholder(), nil
	}
	if resp == nil {
		return nil, errors.New(errors.KindUpstreamMalformed, "analysis.map", "empty provider response")
	}
	return ParseStructured(resp.Text)
}

// rawResult accepts whatever shapes models tend to produce before they are
// flattened into strings.
type rawResult struct {
	Crop              any `json:"crop"`
	Variety           any `json:"variety"`
	Health            any `json:"health"`
	Issues            any `json:"issues"`
	Recommendations   any `json:"recommendations"`
	GrowingConditions any `json:"growingConditions"`
	HarvestInfo       any `json:"harvestInfo"`
}

// ParseStructured decodes the first JSON object in model text. Markdown
// fences and surrounding prose are ignored; missing fields stay empty.
func ParseStructured(text string) (*Result, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, errors.New(errors.KindUpstreamMalformed, "analysis.parse", "no JSON object in provider answer")
	}

	// The decoder stops after the first complete value, so trailing prose
	// and closing fences are never read.
	var raw rawResult
	dec := sonic.ConfigDefault.NewDecoder(strings.NewReader(text[start:]))
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.KindUpstreamMalformed, "analysis.parse", "provider answer is not valid JSON", err)
	}

	result := &Result{
		Crop:              scalar(raw.Crop),
		Variety:           scalar(raw.Variety),
		Health:            scalar(raw.Health),
		Issues:            list(raw.Issues),
		Recommendations:   list(raw.Recommendations),
		GrowingConditions: mapping(raw.GrowingConditions),
		HarvestInfo:       mapping(raw.HarvestInfo),
	}
	return result.normalize(), nil
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool, int, int64:
		return fmt.Sprint(t)
	default:
		encoded, err := sonic.MarshalString(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return encoded
	}
}

func list(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalar(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := scalar(t); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func mapping(v any) map[string]string {
	out := map[string]string{}
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			out[k] = scalar(item)
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out["summary"] = s
		}
	}
	return out
}
