package report

import (
	"encoding/json"
	"fmt"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"

// sarifReport is the top-level SARIF v2.1.0 structure.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string            `json:"id"`
	ShortDescription sarifMessage      `json:"shortDescription"`
	DefaultConfig    sarifDefaultLevel `json:"defaultConfiguration"`
}

type sarifDefaultLevel struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string         `json:"ruleId"`
	Level     string         `json:"level"`
	Message   sarifMessage   `json:"message"`
	Locations []sarifLoc     `json:"locations,omitempty"`
	Props     map[string]any `json:"properties,omitempty"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// Generate writes SARIF v2.1.0 output.
func (r *SARIFReporter) Generate(data Data) error {
	results := make([]sarifResult, 0, len(data.Issues))

	for _, is := range data.Issues {
		result := sarifResult{
			RuleID:  is.ID,
			Level:   sarifLevel(is.Severity),
			Message: sarifMessage{Text: is.Description},
			Props: map[string]any{
				"analyzer":    is.Analyzer,
				"category":    string(is.Category),
				"autoFixable": is.AutoFixable,
			},
		}
		if is.Suggestion != "" {
			result.Props["suggestion"] = is.Suggestion
		}
		if is.File != "" {
			loc := sarifLoc{PhysicalLocation: sarifPhysical{
				ArtifactLocation: sarifArtifact{URI: is.File},
			}}
			if is.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{StartLine: is.Line}
			}
			result.Locations = []sarifLoc{loc}
		}
		results = append(results, result)
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    data.Tool,
						Version: data.Version,
						Rules:   buildSARIFRules(data.Issues),
					},
				},
				Results: results,
			},
		},
	}

	enc := json.NewEncoder(r.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode SARIF report: %w", err)
	}
	return nil
}

func sarifLevel(s issue.Severity) string {
	switch s {
	case issue.SeverityCritical, issue.SeverityHigh:
		return "error"
	case issue.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// buildSARIFRules derives the rule table from the issues that actually
// fired; the full catalog is large and framework-dependent.
func buildSARIFRules(issues []issue.Issue) []sarifRule {
	seen := make(map[string]bool)
	var rules []sarifRule
	for _, is := range issues {
		if seen[is.ID] {
			continue
		}
		seen[is.ID] = true
		rules = append(rules, sarifRule{
			ID:               is.ID,
			ShortDescription: sarifMessage{Text: is.Title},
			DefaultConfig:    sarifDefaultLevel{Level: sarifLevel(is.Severity)},
		})
	}
	return rules
}
