package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// ConfigFiles checks for framework configuration files, linter setup, an
// .editorconfig, and a committed .env.
type ConfigFiles struct{}

func (a *ConfigFiles) Name() string { return "config_files" }
func (a *ConfigFiles) Description() string {
	return "Checks for framework-specific configuration files and common config issues"
}
func (a *ConfigFiles) Category() issue.Category { return issue.CategoryConfiguration }

func (a *ConfigFiles) AppliesTo(_ *project.Project) bool { return true }

func (a *ConfigFiles) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot
	fw := proj.Detected.Framework

	issues = append(issues, a.checkFrameworkConfig(snap, fw)...)
	issues = append(issues, a.checkLinterConfig(snap, fw)...)
	issues = append(issues, a.checkEditorConfig(snap)...)
	issues = append(issues, a.checkEnvCommitted(snap)...)
	return issues, nil
}

func (a *ConfigFiles) checkFrameworkConfig(snap *project.Snapshot, fw project.Framework) []issue.Issue {
	type expected struct {
		file string
		desc string
	}
	var missing []expected

	switch fw {
	case project.FrameworkSymfony:
		if !snap.HasFile(".env.example") && !snap.HasFile(".env.dist") {
			missing = append(missing, expected{".env.example", "Environment example file for team onboarding"})
		}
		if !snap.HasFile("config/packages/doctrine.yaml") {
			missing = append(missing, expected{"config/packages/doctrine.yaml", "Doctrine ORM configuration"})
		}
		if !snap.HasFile("config/packages/security.yaml") {
			missing = append(missing, expected{"config/packages/security.yaml", "Security configuration"})
		}
	case project.FrameworkLaravel:
		if !snap.HasFile(".env.example") {
			missing = append(missing, expected{".env.example", "Environment example file for team onboarding"})
		}
		if !snap.HasFile("config/app.php") {
			missing = append(missing, expected{"config/app.php", "Application configuration"})
		}
		if !snap.HasFile("config/database.php") {
			missing = append(missing, expected{"config/database.php", "Database configuration"})
		}
	case project.FrameworkFlutter:
		if !snap.HasFile("analysis_options.yaml") {
			missing = append(missing, expected{"analysis_options.yaml", "Dart analysis options for linting"})
		}
	case project.FrameworkNextJS:
		if !snap.HasFile("tsconfig.json") && !snap.HasFile("jsconfig.json") {
			missing = append(missing, expected{"tsconfig.json", "TypeScript/JavaScript configuration for path aliases and compiler options"})
		}
	case project.FrameworkRustCargo:
		if !snap.HasFile("rustfmt.toml") && !snap.HasFile(".rustfmt.toml") {
			missing = append(missing, expected{"rustfmt.toml", "Rust formatter configuration"})
		}
	case project.FrameworkPython:
		if !snap.HasFile("setup.cfg") && !hasPyprojectToolSection(snap) {
			missing = append(missing, expected{"setup.cfg or pyproject.toml [tool.*]", "Python tooling configuration"})
		}
	}

	var issues []issue.Issue
	for _, m := range missing {
		issues = append(issues, issue.Issue{
			ID:          "CFG-001",
			Analyzer:    a.Name(),
			Category:    issue.CategoryConfiguration,
			Severity:    issue.SeverityMedium,
			Title:       fmt.Sprintf("Missing %s", m.file),
			Description: fmt.Sprintf("%s. This file is recommended for %s projects.", m.desc, fw),
			Suggestion:  fmt.Sprintf("Create %s", m.file),
		})
	}
	return issues
}

func hasPyprojectToolSection(snap *project.Snapshot) bool {
	content, err := snap.ReadFile("pyproject.toml")
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "[tool.")
}

var eslintConfigs = []string{
	".eslintrc", ".eslintrc.js", ".eslintrc.cjs", ".eslintrc.json",
	".eslintrc.yml", ".eslintrc.yaml",
	"eslint.config.js", "eslint.config.mjs", "eslint.config.cjs",
}

var prettierConfigs = []string{
	".prettierrc", ".prettierrc.js", ".prettierrc.json",
	".prettierrc.yml", ".prettierrc.yaml", "prettier.config.js",
}

func (a *ConfigFiles) checkLinterConfig(snap *project.Snapshot, fw project.Framework) []issue.Issue {
	var hasLinter bool
	switch fw {
	case project.FrameworkFlutter:
		hasLinter = snap.HasFile("analysis_options.yaml")
	case project.FrameworkRustCargo:
		hasLinter = snap.HasFile("clippy.toml") || snap.HasFile(".clippy.toml")
	case project.FrameworkNodeJS, project.FrameworkNextJS:
		hasLinter = hasAnyFile(snap, eslintConfigs) || hasAnyFile(snap, prettierConfigs)
	case project.FrameworkPython:
		hasLinter = snap.HasFile(".flake8") || snap.HasFile("setup.cfg") ||
			snap.HasFile(".pylintrc") || hasPyprojectToolSection(snap)
	case project.FrameworkSymfony, project.FrameworkLaravel:
		hasLinter = snap.HasFile("phpstan.neon") || snap.HasFile("phpstan.neon.dist") ||
			snap.HasFile(".php-cs-fixer.php") || snap.HasFile(".php-cs-fixer.dist.php")
	default:
		return nil
	}

	if hasLinter {
		return nil
	}
	return []issue.Issue{{
		ID:          "CFG-004",
		Analyzer:    a.Name(),
		Category:    issue.CategoryConfiguration,
		Severity:    issue.SeverityMedium,
		Title:       "Missing linter configuration",
		Description: fmt.Sprintf("No linter or code style configuration found for %s project.", fw),
		Suggestion:  "Add a linter configuration file to enforce code quality",
	}}
}

func (a *ConfigFiles) checkEditorConfig(snap *project.Snapshot) []issue.Issue {
	if snap.HasFile(".editorconfig") {
		return nil
	}
	return []issue.Issue{{
		ID:          "CFG-002",
		Analyzer:    a.Name(),
		Category:    issue.CategoryConfiguration,
		Severity:    issue.SeverityLow,
		Title:       "Missing .editorconfig",
		Description: "No .editorconfig found. This file helps maintain consistent coding styles across editors.",
		Suggestion:  "Create an .editorconfig file to define coding style rules",
		AutoFixable: true,
		References:  []string{"https://editorconfig.org"},
	}}
}

func (a *ConfigFiles) checkEnvCommitted(snap *project.Snapshot) []issue.Issue {
	if !snap.HasFile(".env") || envGitignored(snap) {
		return nil
	}
	return []issue.Issue{{
		ID:          "CFG-003",
		Analyzer:    a.Name(),
		Category:    issue.CategoryConfiguration,
		Severity:    issue.SeverityCritical,
		Title:       ".env file found in project root",
		Description: ".env file exists and may not be gitignored. This could lead to secret leaks.",
		File:        ".env",
		Suggestion:  "Add .env to .gitignore to prevent committing secrets",
		AutoFixable: true,
	}}
}

func envGitignored(snap *project.Snapshot) bool {
	content, err := snap.ReadFile(".gitignore")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(content), "\n") {
		switch strings.TrimSpace(line) {
		case ".env", "/.env", ".env*":
			return true
		}
	}
	return false
}

func hasAnyFile(snap *project.Snapshot, names []string) bool {
	for _, n := range names {
		if snap.HasFile(n) {
			return true
		}
	}
	return false
}
