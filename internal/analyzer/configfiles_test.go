package analyzer

import (
	"testing"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

func TestConfigFilesMissingEditorConfig(t *testing.T) {
	proj := buildProject(t, map[string]string{"README.md": "# x\n"})
	issues := runAnalyzer(t, &ConfigFiles{}, proj)

	cfg002 := findIssue(t, issues, "CFG-002")
	if !cfg002.AutoFixable {
		t.Error("CFG-002 should be auto-fixable")
	}
	if len(cfg002.References) == 0 {
		t.Error("CFG-002 should carry a reference link")
	}
}

func TestConfigFilesEnvNotGitignored(t *testing.T) {
	proj := buildProject(t, map[string]string{
		".env":       "APP_KEY=x\n",
		".gitignore": "vendor/\n",
	})
	issues := runAnalyzer(t, &ConfigFiles{}, proj)

	cfg003 := findIssue(t, issues, "CFG-003")
	if cfg003.Severity != issue.SeverityCritical {
		t.Errorf("severity = %s, want critical", cfg003.Severity)
	}
}

func TestConfigFilesEnvGitignoredVariants(t *testing.T) {
	for _, entry := range []string{".env", "/.env", ".env*"} {
		proj := buildProject(t, map[string]string{
			".env":       "APP_KEY=x\n",
			".gitignore": entry + "\n",
		})
		issues := runAnalyzer(t, &ConfigFiles{}, proj)
		if hasIssue(issues, "CFG-003") {
			t.Errorf("CFG-003 fired despite gitignore entry %q", entry)
		}
	}
}

func TestConfigFilesSymfonyMissingConfigs(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"symfony.lock":  "{}",
		"composer.json": "{}",
	})
	issues := runAnalyzer(t, &ConfigFiles{}, proj)

	count := 0
	for _, is := range issues {
		if is.ID == "CFG-001" {
			count++
		}
	}
	// .env.example, doctrine.yaml, security.yaml all missing.
	if count != 3 {
		t.Errorf("got %d CFG-001 issues, want 3", count)
	}
	if !hasIssue(issues, "CFG-004") {
		t.Error("expected CFG-004 without phpstan or php-cs-fixer config")
	}
}

func TestConfigFilesNodeLinterDetected(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"package.json": "{}",
		".eslintrc":    "{}",
	})
	issues := runAnalyzer(t, &ConfigFiles{}, proj)
	if hasIssue(issues, "CFG-004") {
		t.Error("CFG-004 fired despite .eslintrc present")
	}
}

func TestConfigFilesGenericSkipsLinterCheck(t *testing.T) {
	proj := buildProject(t, map[string]string{"notes.txt": "x\n"})
	issues := runAnalyzer(t, &ConfigFiles{}, proj)
	if hasIssue(issues, "CFG-004") {
		t.Error("generic projects have no linter expectation")
	}
	if hasIssue(issues, "CFG-001") {
		t.Error("generic projects have no framework config expectation")
	}
}

func TestConfigFilesPythonToolSection(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"pyproject.toml": "[tool.ruff]\nline-length = 100\n",
	})
	issues := runAnalyzer(t, &ConfigFiles{}, proj)
	if hasIssue(issues, "CFG-001") {
		t.Error("CFG-001 fired despite pyproject [tool.*] section")
	}
	if hasIssue(issues, "CFG-004") {
		t.Error("CFG-004 fired despite pyproject [tool.*] section")
	}
}
