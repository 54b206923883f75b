package render

import (
	"encoding/json"
)

// JSON renders a listing as structured JSON for automation.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// jsonOutput is the top-level JSON structure.
type jsonOutput struct {
	Version     string           `json:"version"`
	File        string           `json:"file"`
	Verdict     string           `json:"verdict"`
	Summary     jsonSummary      `json:"summary"`
	Status      []string         `json:"status,omitempty"`
	Annotations []jsonAnnotation `json:"annotations"`
}

type jsonSummary struct {
	Groups   int `json:"groups"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Panicked int `json:"panicked"`
}

type jsonAnnotation struct {
	Line     int    `json:"line"` // 1-based
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// Render formats the listing as JSON.
func (j *JSON) Render(l Listing) string {
	out := jsonOutput{
		Version: "1.0",
		File:    l.Path,
		Verdict: verdict(l.Summary),
		Summary: jsonSummary{
			Groups:   l.Summary.Groups,
			Passed:   l.Summary.Passed,
			Failed:   l.Summary.Failed,
			Panicked: l.Summary.Panicked,
		},
		Status:      l.Status,
		Annotations: make([]jsonAnnotation, 0, len(l.Annotations)),
	}
	for _, a := range l.Annotations {
		out.Annotations = append(out.Annotations, jsonAnnotation{
			Line:     a.Line + 1,
			Severity: a.Severity().String(),
			Text:     a.Text(),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		errJSON, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(errJSON)
	}
	return string(data) + "\n"
}
