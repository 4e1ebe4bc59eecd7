package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"lazo-pipeline/internal/app/model"
)

// ParseAnalysis extracts the outermost JSON object from a model reply and decodes it.
// Models sometimes wrap the object in prose or code fences.
func ParseAnalysis(text string) (*model.ClinicalAnalysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var out model.ClinicalAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON in model response: %w", err)
	}
	if strings.TrimSpace(out.ClinicalNote) == "" {
		return nil, fmt.Errorf("model response has no clinical_note")
	}

	if out.Topics == nil {
		out.Topics = []model.Topic{}
	}
	if out.ActionItems == nil {
		out.ActionItems = []string{}
	}
	if out.Entities == nil {
		out.Entities = []model.Entity{}
	}
	if out.RiskAssessment.Alerts == nil {
		out.RiskAssessment.Alerts = []string{}
	}
	return &out, nil
}
