package issue

import (
	"encoding/json"
	"fmt"
)

// Severity orders findings from informational to critical.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Penalty returns the score deduction for one issue of this severity.
func (s Severity) Penalty() int {
	switch s {
	case SeverityCritical:
		return 25
	case SeverityHigh:
		return 15
	case SeverityMedium:
		return 8
	case SeverityLow:
		return 3
	default:
		return 0
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	case SeverityLow:
		return "low"
	default:
		return "info"
	}
}

// ParseSeverity maps a severity token to its Severity. Unknown tokens
// are an error so misspelled config never silently downgrades a rule.
func ParseSeverity(token string) (Severity, error) {
	switch token {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "info":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q (use critical, high, medium, low, or info)", token)
	}
}

// MarshalJSON emits the lowercase token form.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the lowercase token form.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return err
	}
	parsed, err := ParseSeverity(token)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Category is one of the six fixed scoring categories.
type Category string

const (
	CategoryStructure     Category = "Structure"
	CategoryDependencies  Category = "Dependencies"
	CategoryConfiguration Category = "Configuration"
	CategoryTesting       Category = "Testing"
	CategorySecurity      Category = "Security"
	CategoryDocumentation Category = "Documentation"
)

// Categories lists all categories in breakdown order.
func Categories() []Category {
	return []Category{
		CategoryStructure,
		CategoryDependencies,
		CategoryConfiguration,
		CategoryTesting,
		CategorySecurity,
		CategoryDocumentation,
	}
}

// Rule is static metadata for a check an analyzer can emit.
type Rule struct {
	ID          string
	Severity    Severity
	Title       string
	AutoFixable bool
}

// Issue is one finding produced by an analyzer or a custom rule match.
// Immutable after creation; the scoring engine and fixer only read it.
type Issue struct {
	ID          string   `json:"id"`
	Analyzer    string   `json:"analyzer"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	File        string   `json:"file,omitempty"`
	Line        int      `json:"line,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
	AutoFixable bool     `json:"auto_fixable"`
	References  []string `json:"references,omitempty"`
}
