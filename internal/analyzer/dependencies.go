package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Dependencies checks dependency hygiene for the detected package manager:
// lock files, empty manifests, dev packages declared as production
// dependencies, unpinned versions, and oversized dependency lists.
type Dependencies struct{}

func (a *Dependencies) Name() string { return "dependencies" }
func (a *Dependencies) Description() string {
	return "Checks dependency management, lock files, and dependency hygiene"
}
func (a *Dependencies) Category() issue.Category { return issue.CategoryDependencies }

func (a *Dependencies) AppliesTo(proj *project.Project) bool {
	return proj.Detected.PackageManager != ""
}

const maxDirectDeps = 50

func (a *Dependencies) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	switch proj.Detected.Framework {
	case project.FrameworkRustCargo:
		issues = a.checkRust(proj.Snapshot)
	case project.FrameworkNodeJS, project.FrameworkNextJS:
		issues = a.checkNode(proj.Snapshot)
	case project.FrameworkSymfony, project.FrameworkLaravel:
		issues = a.checkPHP(proj.Snapshot)
	case project.FrameworkFlutter:
		issues = a.checkFlutter(proj.Snapshot)
	case project.FrameworkPython:
		issues = a.checkPython(proj.Snapshot)
	}
	return issues, nil
}

func (a *Dependencies) missingLock(name, tool string) issue.Issue {
	return issue.Issue{
		ID:          "DEP-001",
		Analyzer:    a.Name(),
		Category:    issue.CategoryDependencies,
		Severity:    issue.SeverityHigh,
		Title:       fmt.Sprintf("Missing %s", name),
		Description: fmt.Sprintf("No %s found. Lock files ensure reproducible builds.", name),
		Suggestion:  fmt.Sprintf("Run `%s` to generate %s", tool, name),
	}
}

func (a *Dependencies) checkRust(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue
	if !snap.HasFile("Cargo.lock") {
		issues = append(issues, a.missingLock("Cargo.lock", "cargo build"))
	}

	content, err := snap.ReadFile("Cargo.toml")
	if err != nil {
		return issues
	}
	count := countCargoDependencies(string(content))
	switch {
	case count == 0:
		issues = append(issues, issue.Issue{
			ID:          "DEP-002",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityInfo,
			Title:       "No dependencies declared",
			Description: "Cargo.toml has no [dependencies] entries.",
			File:        "Cargo.toml",
		})
	case count > maxDirectDeps:
		issues = append(issues, issue.Issue{
			ID:          "DEP-005",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityLow,
			Title:       fmt.Sprintf("Too many direct dependencies (%d)", count),
			Description: fmt.Sprintf("Project has %d direct dependencies. Consider reducing to improve compile times.", count),
			File:        "Cargo.toml",
			Suggestion:  "Review dependencies and remove unused ones",
		})
	}
	return issues
}

// countCargoDependencies counts assignment lines inside the [dependencies]
// table. A plain line count is enough here, a full TOML parse would also pull
// in dotted sub-tables.
func countCargoDependencies(content string) int {
	inDeps := false
	count := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inDeps = trimmed == "[dependencies]"
			continue
		}
		if inDeps && trimmed != "" && !strings.HasPrefix(trimmed, "#") && strings.Contains(trimmed, "=") {
			count++
		}
	}
	return count
}

func (a *Dependencies) checkNode(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue
	hasLock := snap.HasFile("package-lock.json") || snap.HasFile("yarn.lock") || snap.HasFile("pnpm-lock.yaml")
	if !hasLock {
		issues = append(issues, issue.Issue{
			ID:          "DEP-001",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityHigh,
			Title:       "Missing lock file",
			Description: "No package-lock.json, yarn.lock, or pnpm-lock.yaml found.",
			Suggestion:  "Run `npm install` to generate a lock file",
		})
	}

	pkg := snap.Manifest("package.json")
	if pkg == nil {
		return issues
	}
	deps, _ := pkg.Map("dependencies")
	devDeps, _ := pkg.Map("devDependencies")

	if len(deps) == 0 && len(devDeps) == 0 {
		issues = append(issues, issue.Issue{
			ID:          "DEP-002",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityInfo,
			Title:       "No dependencies declared",
			Description: "package.json has no dependencies or devDependencies.",
			File:        "package.json",
		})
	}

	devInProd := filterKeys(deps, isNodeDevDependency)
	if len(devInProd) > 0 {
		issues = append(issues, issue.Issue{
			ID:          "DEP-003",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityMedium,
			Title:       "Dev dependencies in production section",
			Description: fmt.Sprintf("These packages are likely devDependencies but are listed in dependencies: %s", strings.Join(devInProd, ", ")),
			File:        "package.json",
			Suggestion:  "Move development-only packages to devDependencies",
		})
	}

	if len(deps) > maxDirectDeps {
		issues = append(issues, issue.Issue{
			ID:          "DEP-005",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityLow,
			Title:       fmt.Sprintf("Too many direct dependencies (%d)", len(deps)),
			Description: fmt.Sprintf("package.json has %d production dependencies. Consider reducing bundle size.", len(deps)),
			File:        "package.json",
			Suggestion:  "Review dependencies and remove unused ones",
		})
	}
	return issues
}

var nodeDevPrefixes = []string{
	"eslint", "@types/", "prettier", "jest", "mocha", "chai", "typescript",
	"ts-node", "nodemon", "webpack", "babel", "@babel/", "rollup", "vite",
}

func isNodeDevDependency(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range nodeDevPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func (a *Dependencies) checkPHP(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue
	if !snap.HasFile("composer.lock") {
		issues = append(issues, a.missingLock("composer.lock", "composer install"))
	}

	composer := snap.Manifest("composer.json")
	if composer == nil {
		return issues
	}
	deps, _ := composer.Map("require")
	devDeps, _ := composer.Map("require-dev")

	if len(deps) == 0 && len(devDeps) == 0 {
		issues = append(issues, issue.Issue{
			ID:          "DEP-002",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityInfo,
			Title:       "No dependencies declared",
			Description: "composer.json has no require or require-dev entries.",
			File:        "composer.json",
		})
	}

	devInProd := filterKeys(deps, isPHPDevDependency)
	if len(devInProd) > 0 {
		issues = append(issues, issue.Issue{
			ID:          "DEP-003",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityMedium,
			Title:       "Dev dependencies in production section",
			Description: fmt.Sprintf("These packages are likely require-dev but are in require: %s", strings.Join(devInProd, ", ")),
			File:        "composer.json",
			Suggestion:  "Move development-only packages to require-dev",
		})
	}

	if len(deps) > maxDirectDeps {
		issues = append(issues, issue.Issue{
			ID:          "DEP-005",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityLow,
			Title:       fmt.Sprintf("Too many direct dependencies (%d)", len(deps)),
			Description: fmt.Sprintf("composer.json has %d production dependencies.", len(deps)),
			File:        "composer.json",
			Suggestion:  "Review dependencies and remove unused ones",
		})
	}
	return issues
}

var phpDevPrefixes = []string{
	"phpunit/", "phpstan/", "squizlabs/", "friendsofphp/", "vimeo/psalm",
	"mockery/", "fakerphp/",
}

func isPHPDevDependency(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range phpDevPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func (a *Dependencies) checkFlutter(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue
	if !snap.HasFile("pubspec.lock") {
		issues = append(issues, a.missingLock("pubspec.lock", "flutter pub get"))
	}
	return issues
}

func (a *Dependencies) checkPython(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue
	hasRequirements := snap.HasFile("requirements.txt")
	hasPyproject := snap.HasFile("pyproject.toml")

	if !hasRequirements && !hasPyproject {
		issues = append(issues, issue.Issue{
			ID:          "DEP-002",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityInfo,
			Title:       "No dependencies declared",
			Description: "No requirements.txt or pyproject.toml found.",
		})
	}

	if hasRequirements {
		if content, err := snap.ReadFile("requirements.txt"); err == nil {
			var unpinned []string
			for _, line := range strings.Split(string(content), "\n") {
				trimmed := strings.TrimSpace(line)
				if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") {
					continue
				}
				if !strings.Contains(trimmed, "==") {
					unpinned = append(unpinned, trimmed)
				}
			}
			if len(unpinned) > 0 {
				issues = append(issues, issue.Issue{
					ID:          "DEP-004",
					Analyzer:    a.Name(),
					Category:    issue.CategoryDependencies,
					Severity:    issue.SeverityMedium,
					Title:       "Unpinned dependency versions",
					Description: fmt.Sprintf("These dependencies lack pinned versions (==): %s", strings.Join(unpinned, ", ")),
					File:        "requirements.txt",
					Suggestion:  "Pin versions with == for reproducible builds (e.g., requests==2.28.0)",
				})
			}
		}
	}

	if usesPoetry(snap) && !snap.HasFile("poetry.lock") {
		issues = append(issues, a.missingLock("poetry.lock", "poetry lock"))
	}
	return issues
}

func usesPoetry(snap *project.Snapshot) bool {
	content, err := snap.ReadFile("pyproject.toml")
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "[tool.poetry]")
}

// filterKeys returns the sorted manifest keys matching pred. Sorting keeps
// issue descriptions stable across runs.
func filterKeys(m map[string]any, pred func(string) bool) []string {
	var matched []string
	for k := range m {
		if pred(k) {
			matched = append(matched, k)
		}
	}
	sort.Strings(matched)
	return matched
}
