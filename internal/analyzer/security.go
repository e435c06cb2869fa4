package analyzer

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/cache"
	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Security scans text files for committed secrets and checks that .env is
// gitignored. When Cache is set, per-file scan results are reused for files
// whose content hash has not changed.
type Security struct {
	Cache *cache.Store
}

func (a *Security) Name() string { return "security" }
func (a *Security) Description() string {
	return "Scans for potential secrets, credentials, and security issues"
}
func (a *Security) Category() issue.Category { return issue.CategorySecurity }

func (a *Security) AppliesTo(_ *project.Project) bool { return true }

const (
	maxScannedFiles = 500
	maxScannedLines = 1000
)

var scannableExtensions = map[string]bool{
	"env": true, "yml": true, "yaml": true, "json": true, "toml": true,
	"php": true, "js": true, "ts": true, "py": true, "rs": true,
	"dart": true, "rb": true, "go": true, "cfg": true, "ini": true,
	"conf": true, "properties": true,
}

var secretScanSkipDirs = map[string]bool{
	"node_modules": true, "vendor": true, "target": true, ".git": true,
	".svn": true, "__pycache__": true, ".tox": true, "dist": true, "build": true,
}

var secretScanSkipFiles = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"Cargo.lock": true, "composer.lock": true, "pubspec.lock": true,
	"poetry.lock": true, "Gemfile.lock": true,
}

type secretPattern struct {
	name  string
	regex *regexp.Regexp
}

var secretPatterns = []secretPattern{
	{"API key", regexp.MustCompile(`(?i)(api[_\-]?key|apikey)["']?\s*[=:]\s*["']?[a-zA-Z0-9]{16,}`)},
	{"Password", regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*["'][^"']{4,}["']`)},
	{"Secret/Token", regexp.MustCompile(`(?i)(secret|token|auth)\s*[=:]\s*["'][^"']{8,}["']`)},
	{"AWS Access Key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"Private key", regexp.MustCompile(`-----BEGIN (RSA |EC |DSA )?PRIVATE KEY-----`)},
}

func (a *Security) Analyze(ctx context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot

	issues = append(issues, a.checkEnvGitignore(snap)...)

	for _, rel := range scannableFiles(snap) {
		if err := ctx.Err(); err != nil {
			return issues, err
		}
		content, err := snap.ReadFile(rel)
		if err != nil {
			continue
		}

		if a.Cache != nil {
			key := cache.Key(rel, content)
			if cached, ok := a.Cache.Get(key); ok {
				issues = append(issues, cached...)
				continue
			}
			found := scanFile(rel, content)
			a.Cache.Put(key, found)
			issues = append(issues, found...)
			continue
		}
		issues = append(issues, scanFile(rel, content)...)
	}

	return issues, nil
}

func (a *Security) checkEnvGitignore(snap *project.Snapshot) []issue.Issue {
	if !snap.HasFile(".env") || envGitignored(snap) {
		return nil
	}
	return []issue.Issue{{
		ID:          "SEC-003",
		Analyzer:    "security",
		Category:    issue.CategorySecurity,
		Severity:    issue.SeverityHigh,
		Title:       ".env file without .gitignore entry",
		Description: ".env file exists but is not listed in .gitignore. Secrets may be committed to version control.",
		File:        ".env",
		Suggestion:  "Add .env to .gitignore",
		AutoFixable: true,
	}}
}

// scannableFiles selects the snapshot files worth scanning, capped to keep
// worst-case scan time bounded on huge repositories. Snapshot files are
// sorted, so the selection is deterministic.
func scannableFiles(snap *project.Snapshot) []string {
	var files []string
	for _, rel := range snap.Files {
		if len(files) >= maxScannedFiles {
			break
		}
		if inSkippedDir(rel) || secretScanSkipFiles[path.Base(rel)] {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(rel), "."))
		if scannableExtensions[ext] {
			files = append(files, rel)
		}
	}
	return files
}

func inSkippedDir(rel string) bool {
	dir := path.Dir(rel)
	if dir == "." {
		return false
	}
	for _, seg := range strings.Split(dir, "/") {
		if secretScanSkipDirs[seg] {
			return true
		}
	}
	return false
}

func scanFile(rel string, content []byte) []issue.Issue {
	text := string(content)

	if strings.Contains(text, "-----BEGIN") && strings.Contains(text, "PRIVATE KEY-----") {
		return []issue.Issue{{
			ID:          "SEC-002",
			Analyzer:    "security",
			Category:    issue.CategorySecurity,
			Severity:    issue.SeverityCritical,
			Title:       "Private key file detected",
			Description: fmt.Sprintf("File appears to contain a private key: %s", rel),
			File:        rel,
			Suggestion:  "Remove private keys from the repository and use a secrets manager",
		}}
	}

	var issues []issue.Issue
	for i, line := range strings.Split(text, "\n") {
		if i >= maxScannedLines {
			break
		}
		for _, p := range secretPatterns {
			if !p.regex.MatchString(line) {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          "SEC-001",
				Analyzer:    "security",
				Category:    issue.CategorySecurity,
				Severity:    issue.SeverityCritical,
				Title:       fmt.Sprintf("Potential %s found", p.name),
				Description: fmt.Sprintf("Possible %s detected in %s", p.name, rel),
				File:        rel,
				Line:        i + 1,
				Suggestion:  "Remove credentials and use environment variables or a secrets manager",
			})
			break
		}
	}
	return issues
}
