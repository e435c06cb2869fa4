package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Documentation checks README quality, license content, and the presence of
// community files.
type Documentation struct{}

func (a *Documentation) Name() string              { return "documentation" }
func (a *Documentation) Description() string       { return "Checks documentation quality and completeness" }
func (a *Documentation) Category() issue.Category  { return issue.CategoryDocumentation }

func (a *Documentation) AppliesTo(_ *project.Project) bool { return true }

const minReadmeLines = 5

func (a *Documentation) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot

	if content, err := snap.ReadFile("README.md"); err == nil {
		text := string(content)
		if len(strings.Split(strings.TrimRight(text, "\n"), "\n")) < minReadmeLines {
			issues = append(issues, issue.Issue{
				ID:          "DOC-001",
				Analyzer:    a.Name(),
				Category:    issue.CategoryDocumentation,
				Severity:    issue.SeverityMedium,
				Title:       "README.md is too short",
				Description: "A good README should have at least a description, installation instructions, and usage examples.",
				File:        "README.md",
				Suggestion:  "Add sections: Description, Installation, Usage",
			})
		} else {
			lower := strings.ToLower(text)
			sections := []struct {
				id, keyword, name string
			}{
				{"DOC-002", "install", "Installation"},
				{"DOC-006", "usage", "Usage"},
			}
			for _, s := range sections {
				if strings.Contains(lower, s.keyword) {
					continue
				}
				issues = append(issues, issue.Issue{
					ID:          s.id,
					Analyzer:    a.Name(),
					Category:    issue.CategoryDocumentation,
					Severity:    issue.SeverityLow,
					Title:       fmt.Sprintf("README.md missing %s section", s.name),
					Description: fmt.Sprintf("Consider adding a %s section to help users get started.", s.name),
					File:        "README.md",
					Suggestion:  fmt.Sprintf("Add a ## %s section", s.name),
				})
			}
		}
	}

	if !snap.HasFile("CONTRIBUTING.md") {
		issues = append(issues, issue.Issue{
			ID:          "DOC-003",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDocumentation,
			Severity:    issue.SeverityInfo,
			Title:       "Missing CONTRIBUTING.md",
			Description: "A CONTRIBUTING.md helps new contributors understand how to participate.",
			Suggestion:  "Create a CONTRIBUTING.md with guidelines for contributors",
		})
	}

	for _, name := range []string{"LICENSE", "LICENSE.md"} {
		content, err := snap.ReadFile(name)
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(string(content))) < 50 {
			issues = append(issues, issue.Issue{
				ID:          "DOC-004",
				Analyzer:    a.Name(),
				Category:    issue.CategoryDocumentation,
				Severity:    issue.SeverityMedium,
				Title:       "LICENSE file appears incomplete",
				Description: "The LICENSE file exists but has very little content.",
				File:        name,
				Suggestion:  "Add a proper license text (MIT, Apache 2.0, etc.)",
				References:  []string{"https://choosealicense.com"},
			})
		}
		break
	}

	if !snap.HasFile("CODE_OF_CONDUCT.md") {
		issues = append(issues, issue.Issue{
			ID:          "DOC-005",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDocumentation,
			Severity:    issue.SeverityInfo,
			Title:       "Missing CODE_OF_CONDUCT.md",
			Description: "A code of conduct sets expectations for community behavior.",
			Suggestion:  "Add a CODE_OF_CONDUCT.md (e.g., Contributor Covenant)",
			References:  []string{"https://www.contributor-covenant.org"},
		})
	}

	return issues, nil
}
