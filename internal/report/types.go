package report

import (
	"io"
	"time"

	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
	"github.com/Jonathanlight/repodoctor/internal/score"
)

// Reporter is the interface for output formatters.
type Reporter interface {
	Generate(data Data) error
}

// Data holds all information needed to generate a report.
type Data struct {
	Tool      string            `json:"tool"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Root      string            `json:"root"`
	Detected  project.Detection `json:"detected"`
	Preset    string            `json:"preset"`
	Issues    []issue.Issue     `json:"issues"`
	Score     score.HealthScore `json:"score"`
	FileCount int               `json:"file_count"`
	Duration  time.Duration     `json:"duration"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// TextReporter generates human-readable terminal output.
type TextReporter struct {
	Writer io.Writer
}

// JSONReporter generates repodoctor/v1 envelope JSON output.
type JSONReporter struct {
	Writer io.Writer
}

// SARIFReporter generates SARIF v2.1.0 output.
type SARIFReporter struct {
	Writer io.Writer
}
