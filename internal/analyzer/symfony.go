package analyzer

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Symfony checks Symfony-specific conventions: directory layout, production
// configuration, composer dependencies, test setup, and a few security
// pitfalls.
type Symfony struct{}

func (a *Symfony) Name() string { return "symfony" }
func (a *Symfony) Description() string {
	return "Symfony-specific project structure, configuration, and best practices"
}
func (a *Symfony) Category() issue.Category { return issue.CategoryStructure }

func (a *Symfony) AppliesTo(proj *project.Project) bool {
	return proj.Detected.Framework == project.FrameworkSymfony
}

var symfonyWalkSkipDirs = map[string]bool{
	"vendor": true, "var": true, ".git": true, "node_modules": true,
}

var (
	dbCredentialsRe = regexp.MustCompile(`DATABASE_URL\s*=\s*\S+://\w+:.+@`)
	unserializeRe   = regexp.MustCompile(`unserialize\s*\(`)
)

func (a *Symfony) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot
	composer := snap.Manifest("composer.json")

	issues = append(issues, a.checkStructure(snap)...)
	issues = append(issues, a.checkConfiguration(snap)...)
	if composer != nil {
		issues = append(issues, a.checkDependencies(composer)...)
	}
	issues = append(issues, a.checkTesting(snap, composer)...)
	issues = append(issues, a.checkSecurity(snap, composer)...)
	issues = append(issues, a.checkBestPractices(snap)...)
	return issues, nil
}

func (a *Symfony) checkStructure(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue

	if !snap.IsDir("src/Controller") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-001",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityHigh,
			Title:       "Missing src/Controller/ directory",
			Description: "Symfony projects should have a src/Controller/ directory for HTTP controllers.",
			Suggestion:  "Create src/Controller/ and add your first controller",
			AutoFixable: true,
		})
	}

	if !snap.IsDir("src/Entity") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-002",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityMedium,
			Title:       "Missing src/Entity/ directory",
			Description: "Symfony projects typically use src/Entity/ for Doctrine entity classes.",
			Suggestion:  "Create src/Entity/ if using Doctrine ORM",
			AutoFixable: true,
		})
	}

	for _, file := range misplacedPHPFiles(snap, "Controller.php", "src/Controller") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-003",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityMedium,
			Title:       "Controller outside src/Controller/",
			Description: fmt.Sprintf("Controller file found outside the standard directory: %s", file),
			File:        file,
			Suggestion:  "Move controller files to src/Controller/",
		})
	}

	for _, file := range misplacedPHPFiles(snap, "Service.php", "src/Service") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-004",
			Analyzer:    a.Name(),
			Category:    issue.CategoryStructure,
			Severity:    issue.SeverityLow,
			Title:       "Service outside src/Service/",
			Description: fmt.Sprintf("Service file found outside the standard directory: %s", file),
			File:        file,
			Suggestion:  "Move service files to src/Service/",
		})
	}

	return issues
}

// misplacedPHPFiles finds files ending with suffix that live outside
// expectedDir, skipping vendor/, var/, .git/, and node_modules/.
func misplacedPHPFiles(snap *project.Snapshot, suffix, expectedDir string) []string {
	var results []string
	prefix := expectedDir + "/"
	for _, rel := range snap.Files {
		if !strings.HasSuffix(path.Base(rel), suffix) {
			continue
		}
		if strings.HasPrefix(rel, prefix) {
			continue
		}
		skip := false
		for _, seg := range strings.Split(path.Dir(rel), "/") {
			if symfonyWalkSkipDirs[seg] {
				skip = true
				break
			}
		}
		if !skip {
			results = append(results, rel)
		}
	}
	return results
}

var weakAppSecrets = []string{
	"change_me",
	"your_app_secret",
	"ThisTokenIsNotSoSecretChangeIt",
	"somedefaultsecret",
}

func (a *Symfony) checkConfiguration(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue

	if content, err := snap.ReadFile(".env"); err == nil {
		for _, line := range strings.Split(string(content), "\n") {
			trimmed := strings.TrimSpace(line)
			if !strings.HasPrefix(trimmed, "APP_SECRET=") {
				continue
			}
			value := strings.TrimSpace(strings.TrimPrefix(trimmed, "APP_SECRET="))
			weak := len(value) < 16
			for _, d := range weakAppSecrets {
				if strings.EqualFold(value, d) {
					weak = true
					break
				}
			}
			if weak {
				issues = append(issues, issue.Issue{
					ID:          "SYM-012",
					Analyzer:    a.Name(),
					Category:    issue.CategoryConfiguration,
					Severity:    issue.SeverityCritical,
					Title:       "Weak or default APP_SECRET",
					Description: "APP_SECRET in .env is a known default or shorter than 16 characters.",
					File:        ".env",
					Suggestion:  "Generate a strong random secret: `php -r \"echo bin2hex(random_bytes(16));\"`",
				})
			}
			break
		}
	}

	for _, rel := range snap.FilesUnder("config/packages/prod") {
		if !strings.HasSuffix(rel, ".yaml") && !strings.HasSuffix(rel, ".yml") {
			continue
		}
		if path.Dir(rel) != "config/packages/prod" {
			continue
		}
		content, err := snap.ReadFile(rel)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(content), "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "debug:") && strings.Contains(trimmed, "true") {
				issues = append(issues, issue.Issue{
					ID:          "SYM-013",
					Analyzer:    a.Name(),
					Category:    issue.CategoryConfiguration,
					Severity:    issue.SeverityCritical,
					Title:       "Debug enabled in production config",
					Description: fmt.Sprintf("debug: true found in production config file: %s", rel),
					File:        rel,
					Suggestion:  "Remove or set debug: false in production configuration",
					AutoFixable: true,
				})
				break
			}
		}
	}

	return issues
}

// parseMajorVersion extracts the major version from a composer constraint
// such as ^6.4, ~5.4, >=6.0, or 6.4.*.
func parseMajorVersion(constraint string) (int, bool) {
	cleaned := strings.TrimSpace(constraint)
	for _, p := range []string{"^", "~", ">=", "<=", ">", "<", "="} {
		cleaned = strings.TrimPrefix(cleaned, p)
	}
	cleaned = strings.TrimSpace(cleaned)
	first, _, _ := strings.Cut(cleaned, ".")
	major, err := strconv.Atoi(first)
	if err != nil {
		return 0, false
	}
	return major, true
}

func (a *Symfony) checkDependencies(composer *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	require, _ := composer.Map("require")
	for _, pkg := range sortedKeys(require) {
		if !strings.HasPrefix(pkg, "symfony/") {
			continue
		}
		version, _ := require[pkg].(string)
		major, ok := parseMajorVersion(version)
		if !ok || major >= 6 {
			continue
		}
		issues = append(issues, issue.Issue{
			ID:          "SYM-020",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityHigh,
			Title:       fmt.Sprintf("Outdated Symfony package: %s (v%d)", pkg, major),
			Description: fmt.Sprintf("%s requires version %s which is below Symfony 6. Consider upgrading.", pkg, version),
			File:        "composer.json",
			Suggestion:  "Upgrade to Symfony 6+ for long-term support and security fixes",
		})
		// Report once per project, not per package
		break
	}

	if !composer.Has("require", "symfony/runtime") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-022",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityLow,
			Title:       "Missing symfony/runtime",
			Description: "symfony/runtime is not in require. It provides the Runtime component for better application bootstrapping.",
			File:        "composer.json",
			Suggestion:  "Run `composer require symfony/runtime`",
		})
	}

	return issues
}

func (a *Symfony) checkTesting(snap *project.Snapshot, composer *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	if !snap.HasFile("phpunit.xml.dist") && !snap.HasFile("phpunit.xml") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-030",
			Analyzer:    a.Name(),
			Category:    issue.CategoryTesting,
			Severity:    issue.SeverityMedium,
			Title:       "Missing PHPUnit configuration",
			Description: "No phpunit.xml.dist or phpunit.xml found.",
			Suggestion:  "Create phpunit.xml.dist with your test configuration",
		})
	}

	if !snap.IsDir("tests") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-031",
			Analyzer:    a.Name(),
			Category:    issue.CategoryTesting,
			Severity:    issue.SeverityHigh,
			Title:       "Missing tests/ directory",
			Description: "No tests/ directory found. Symfony projects should have automated tests.",
			Suggestion:  "Create a tests/ directory and add your first test case",
			AutoFixable: true,
		})
	}

	if composer != nil {
		hasPHPUnit := composer.Has("require-dev", "phpunit/phpunit") ||
			composer.Has("require-dev", "symfony/phpunit-bridge") ||
			composer.Has("require", "phpunit/phpunit") ||
			composer.Has("require", "symfony/phpunit-bridge")
		if !hasPHPUnit {
			issues = append(issues, issue.Issue{
				ID:          "SYM-032",
				Analyzer:    a.Name(),
				Category:    issue.CategoryTesting,
				Severity:    issue.SeverityHigh,
				Title:       "Missing PHPUnit dependency",
				Description: "Neither phpunit/phpunit nor symfony/phpunit-bridge found in composer.json.",
				File:        "composer.json",
				Suggestion:  "Run `composer require --dev symfony/phpunit-bridge`",
			})
		}
	}

	return issues
}

func (a *Symfony) checkSecurity(snap *project.Snapshot, composer *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	if content, err := snap.ReadFile(".env"); err == nil {
		for _, line := range strings.Split(string(content), "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") {
				continue
			}
			if dbCredentialsRe.MatchString(trimmed) {
				issues = append(issues, issue.Issue{
					ID:          "SYM-040",
					Analyzer:    a.Name(),
					Category:    issue.CategorySecurity,
					Severity:    issue.SeverityCritical,
					Title:       "Hardcoded database credentials in .env",
					Description: "DATABASE_URL contains inline credentials (user:pass@). Use environment variables in production.",
					File:        ".env",
					Suggestion:  "Use environment variables or a secrets vault for database credentials",
				})
				break
			}
		}
	}

	// Only flag missing CORS when the project has controllers and likely
	// serves HTTP.
	if composer != nil && snap.IsDir("src/Controller") && !composer.Has("require", "nelmio/cors-bundle") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-041",
			Analyzer:    a.Name(),
			Category:    issue.CategorySecurity,
			Severity:    issue.SeverityMedium,
			Title:       "Missing CORS bundle",
			Description: "nelmio/cors-bundle is not installed. API projects need CORS configuration.",
			File:        "composer.json",
			Suggestion:  "Run `composer require nelmio/cors-bundle`",
		})
	}

	for _, rel := range snap.FilesUnder("src") {
		if !strings.HasSuffix(rel, ".php") {
			continue
		}
		content, err := snap.ReadFile(rel)
		if err != nil {
			continue
		}
		for i, line := range strings.Split(string(content), "\n") {
			if unserializeRe.MatchString(line) {
				issues = append(issues, issue.Issue{
					ID:          "SYM-042",
					Analyzer:    a.Name(),
					Category:    issue.CategorySecurity,
					Severity:    issue.SeverityCritical,
					Title:       "Unsafe unserialize() call",
					Description: fmt.Sprintf("unserialize() found in %s. This can lead to object injection vulnerabilities.", rel),
					File:        rel,
					Line:        i + 1,
					Suggestion:  "Use json_decode() or Symfony Serializer instead of unserialize()",
				})
				break
			}
		}
	}

	return issues
}

func (a *Symfony) checkBestPractices(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue

	// No .gitignore is already flagged by the structure analyzer.
	if content, err := snap.ReadFile(".gitignore"); err == nil {
		var missing []string
		if !gitignoreHasEntry(string(content), "var") {
			missing = append(missing, "var/")
		}
		if !gitignoreHasEntry(string(content), "vendor") {
			missing = append(missing, "vendor/")
		}
		if len(missing) > 0 {
			issues = append(issues, issue.Issue{
				ID:          "SYM-050",
				Analyzer:    a.Name(),
				Category:    issue.CategoryStructure,
				Severity:    issue.SeverityMedium,
				Title:       fmt.Sprintf(".gitignore missing: %s", strings.Join(missing, ", ")),
				Description: fmt.Sprintf(".gitignore should include %s for Symfony projects.", strings.Join(missing, " and ")),
				File:        ".gitignore",
				Suggestion:  fmt.Sprintf("Add %s to .gitignore", strings.Join(missing, " and ")),
				AutoFixable: true,
			})
		}
	}

	if !snap.HasFile("rector.php") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-052",
			Analyzer:    a.Name(),
			Category:    issue.CategoryConfiguration,
			Severity:    issue.SeverityInfo,
			Title:       "Missing rector.php",
			Description: "Rector automates code upgrades and refactoring for PHP/Symfony projects.",
			Suggestion:  "Run `composer require --dev rector/rector` and create rector.php",
		})
	}

	if !snap.HasFile("phpstan.neon") && !snap.HasFile("phpstan.neon.dist") {
		issues = append(issues, issue.Issue{
			ID:          "SYM-053",
			Analyzer:    a.Name(),
			Category:    issue.CategoryConfiguration,
			Severity:    issue.SeverityMedium,
			Title:       "Missing PHPStan configuration",
			Description: "No phpstan.neon or phpstan.neon.dist found. Static analysis catches bugs early.",
			Suggestion:  "Run `composer require --dev phpstan/phpstan` and create phpstan.neon",
		})
	}

	return issues
}

// gitignoreHasEntry reports whether the gitignore content lists dir in any
// of its common spellings (dir, dir/, /dir/).
func gitignoreHasEntry(content, dir string) bool {
	for _, line := range strings.Split(content, "\n") {
		switch strings.TrimSpace(line) {
		case dir, dir + "/", "/" + dir + "/":
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	return filterKeys(m, func(string) bool { return true })
}
