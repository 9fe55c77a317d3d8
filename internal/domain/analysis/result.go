// Package analysis turns a vision provider answer into the crop report
// returned by the analyze endpoint.
package analysis

// Result is the crop report. Empty lists and maps serialise as [] and {}.
type Result struct {
	Crop              string            `json:"crop"`
	Variety           string            `json:"variety"`
	Health            string            `json:"health"`
	Issues            []string          `json:"issues"`
	Recommendations   []string          `json:"recommendations"`
	GrowingConditions map[string]string `json:"growingConditions"`
	HarvestInfo       map[string]string `json:"harvestInfo"`
}

// Placeholder is the fixed report returned when the provider answer is not parsed.
func Placeholder() *Result {
	return &Result{
		Crop:              "Identified Crop",
		Variety:           "Crop Variety",
		Health:            "Good",
		Issues:            []string{},
		Recommendations:   []string{},
		GrowingConditions: map[string]string{},
		HarvestInfo:       map[string]string{},
	}
}

// normalize replaces nil collections so the JSON shape never changes.
func (r *Result) normalize() *Result {
	if r.Issues == nil {
		r.Issues = []string{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	if r.GrowingConditions == nil {
		r.GrowingConditions = map[string]string{}
	}
	if r.HarvestInfo == nil {
		r.HarvestInfo = map[string]string{}
	}
	return r
}
