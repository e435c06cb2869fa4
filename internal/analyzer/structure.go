package analyzer

import (
	"context"
	"fmt"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Structure checks the repository layout: required directories for the
// detected framework, essential top-level files, nesting depth, and paths
// that should never be committed.
type Structure struct{}

func (a *Structure) Name() string        { return "structure" }
func (a *Structure) Description() string { return "Analyzes project directory structure and essential files" }
func (a *Structure) Category() issue.Category { return issue.CategoryStructure }

func (a *Structure) AppliesTo(_ *project.Project) bool { return true }

func requiredDirs(fw project.Framework) []string {
	switch fw {
	case project.FrameworkSymfony:
		return []string{"src", "config", "templates"}
	case project.FrameworkLaravel:
		return []string{"app", "config", "resources", "routes"}
	case project.FrameworkFlutter:
		return []string{"lib", "test"}
	case project.FrameworkNextJS:
		return []string{"pages", "public"}
	case project.FrameworkRustCargo, project.FrameworkNodeJS, project.FrameworkPython:
		return []string{"src"}
	default:
		return nil
	}
}

var forbiddenPaths = []string{"node_modules", ".env", "dist/credentials"}

const maxRecommendedDepth = 8

func (a *Structure) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot
	fw := proj.Detected.Framework

	for _, dir := range requiredDirs(fw) {
		if snap.IsDir(dir) {
			continue
		}
		issues = append(issues, issue.Issue{
			ID:          "STR-001",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityHigh,
			Title:       fmt.Sprintf("Missing required directory: %s", dir),
			Description: fmt.Sprintf("The %q directory is expected for %s projects.", dir, fw),
			Suggestion:  fmt.Sprintf("Create the %q directory", dir),
			AutoFixable: true,
		})
	}

	if !snap.HasFile("README.md") {
		issues = append(issues, issue.Issue{
			ID:          "STR-002",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityMedium,
			Title:       "Missing README.md",
			Description: "A README.md file is essential for project documentation.",
			Suggestion:  "Create a README.md with project description and usage instructions",
		})
	}

	if !snap.HasFile(".gitignore") {
		issues = append(issues, issue.Issue{
			ID:          "STR-003",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityMedium,
			Title:       "Missing .gitignore",
			Description: "A .gitignore file prevents committing unwanted files.",
			Suggestion:  "Create a .gitignore appropriate for your framework",
			AutoFixable: true,
		})
	}

	if !snap.HasFile("LICENSE") && !snap.HasFile("LICENSE.md") {
		issues = append(issues, issue.Issue{
			ID:          "STR-004",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityLow,
			Title:       "Missing LICENSE file",
			Description: "A LICENSE file clarifies how others can use your code.",
			Suggestion:  "Add a LICENSE file (MIT, Apache-2.0, etc.)",
		})
	}

	if snap.MaxDepth > maxRecommendedDepth {
		issues = append(issues, issue.Issue{
			ID:          "STR-005",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityMedium,
			Title:       fmt.Sprintf("Excessive directory depth: %d", snap.MaxDepth),
			Description: "Deep nesting makes code harder to navigate and maintain.",
			Suggestion:  fmt.Sprintf("Consider flattening your directory structure (max recommended: %d levels)", maxRecommendedDepth),
		})
	}

	for _, forbidden := range forbiddenPaths {
		if !snap.Exists(forbidden) {
			continue
		}
		issues = append(issues, issue.Issue{
			ID:          "STR-006",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityCritical,
			Title:       fmt.Sprintf("Forbidden path found: %s", forbidden),
			Description: fmt.Sprintf("The path %q should not be in the repository.", forbidden),
			File:        forbidden,
			Suggestion:  fmt.Sprintf("Remove %q and add it to .gitignore", forbidden),
		})
	}

	return issues, nil
}
