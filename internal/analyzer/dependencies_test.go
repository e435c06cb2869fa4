package analyzer

import (
	"strings"
	"testing"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

func TestDependenciesAppliesToPackageManagerOnly(t *testing.T) {
	plain := buildProject(t, map[string]string{"notes.txt": "hi\n"})
	if (&Dependencies{}).AppliesTo(plain) {
		t.Error("should not apply without a package manager")
	}

	rust := buildProject(t, map[string]string{"Cargo.toml": "[package]\n"})
	if !(&Dependencies{}).AppliesTo(rust) {
		t.Error("should apply to a cargo project")
	}
}

func TestDependenciesRustMissingLock(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"Cargo.toml": "[dependencies]\nserde = \"1\"\n",
	})
	issues := runAnalyzer(t, &Dependencies{}, proj)

	dep001 := findIssue(t, issues, "DEP-001")
	if dep001.Title != "Missing Cargo.lock" {
		t.Errorf("title = %q", dep001.Title)
	}
}

func TestDependenciesRustNoDeps(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"demo\"\n\n[dependencies]\n",
		"Cargo.lock": "",
	})
	issues := runAnalyzer(t, &Dependencies{}, proj)

	if !hasIssue(issues, "DEP-002") {
		t.Error("expected DEP-002 for empty [dependencies]")
	}
	if hasIssue(issues, "DEP-001") {
		t.Error("DEP-001 should not fire when Cargo.lock exists")
	}
}

func TestDependenciesNodeDevDepsInProduction(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"package.json": `{
  "dependencies": {"express": "^4.18.0", "typescript": "^5.0.0", "eslint": "^8.0.0"},
  "devDependencies": {"jest": "^29.0.0"}
}`,
		"package-lock.json": "{}",
	})
	issues := runAnalyzer(t, &Dependencies{}, proj)

	dep003 := findIssue(t, issues, "DEP-003")
	// Keys are reported sorted for stable output.
	if !strings.Contains(dep003.Description, "eslint, typescript") {
		t.Errorf("description = %q, want sorted offenders", dep003.Description)
	}
}

func TestDependenciesNodeMissingLock(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"package.json": `{"dependencies": {"express": "^4.18.0"}}`,
	})
	issues := runAnalyzer(t, &Dependencies{}, proj)

	dep001 := findIssue(t, issues, "DEP-001")
	if dep001.Severity != issue.SeverityHigh {
		t.Errorf("severity = %s, want high", dep001.Severity)
	}
}

func TestDependenciesPythonUnpinned(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"requirements.txt": "# deps\nrequests==2.28.0\nflask\n-r extra.txt\n",
	})
	issues := runAnalyzer(t, &Dependencies{}, proj)

	dep004 := findIssue(t, issues, "DEP-004")
	if !strings.Contains(dep004.Description, "flask") {
		t.Errorf("description = %q, want flask flagged", dep004.Description)
	}
	if strings.Contains(dep004.Description, "requests") {
		t.Error("pinned requests should not be flagged")
	}
}

func TestDependenciesPoetryMissingLock(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"pyproject.toml": "[tool.poetry]\nname = \"demo\"\n",
	})
	issues := runAnalyzer(t, &Dependencies{}, proj)

	if !hasIssue(issues, "DEP-001") {
		t.Error("expected DEP-001 for poetry project without poetry.lock")
	}
}

func TestDependenciesFlutterMissingLock(t *testing.T) {
	proj := buildProject(t, map[string]string{
		"pubspec.yaml": "name: demo\n",
	})
	issues := runAnalyzer(t, &Dependencies{}, proj)

	dep001 := findIssue(t, issues, "DEP-001")
	if dep001.Title != "Missing pubspec.lock" {
		t.Errorf("title = %q", dep001.Title)
	}
}

func TestCountCargoDependencies(t *testing.T) {
	content := `[package]
name = "demo"

[dependencies]
serde = "1"
tokio = { version = "1", features = ["full"] }
# a comment

[dev-dependencies]
tempfile = "3"
`
	if got := countCargoDependencies(content); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}
