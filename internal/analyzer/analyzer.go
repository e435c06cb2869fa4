// Package analyzer contains the diagnostic checks that inspect a project
// snapshot and report issues. Each analyzer covers one concern (structure,
// dependencies, security, ...) and the orchestrator runs the applicable
// ones concurrently.
package analyzer

import (
	"context"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Analyzer is a single diagnostic check suite.
type Analyzer interface {
	// Name is the stable identifier used for enable/disable toggles and
	// reported on every issue the analyzer emits.
	Name() string
	// Description is a one-line summary shown in command help output.
	Description() string
	// Category is the scoring category issues from this analyzer count toward.
	Category() issue.Category
	// AppliesTo reports whether the analyzer has anything to say about the
	// given project. Framework-specific analyzers return false for other
	// frameworks and are skipped entirely.
	AppliesTo(proj *project.Project) bool
	// Analyze inspects the project and returns the issues it found. The
	// context carries the per-analyzer deadline.
	Analyze(ctx context.Context, proj *project.Project, rules *config.Ruleset) ([]issue.Issue, error)
}

// All returns the full catalog in registration order.
func All() []Analyzer {
	return []Analyzer{
		&Structure{},
		&Dependencies{},
		&ConfigFiles{},
		&Testing{},
		&Documentation{},
		&Security{},
		&Symfony{},
		&Flutter{},
		&NextJS{},
	}
}
