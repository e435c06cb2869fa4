package analyzer

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Flutter checks Flutter-specific conventions: lib/ organization, platform
// scaffolding, pubspec hygiene, widget tests, and insecure patterns in Dart
// code.
type Flutter struct{}

func (a *Flutter) Name() string { return "flutter" }
func (a *Flutter) Description() string {
	return "Flutter-specific project structure, configuration, and best practices"
}
func (a *Flutter) Category() issue.Category { return issue.CategoryStructure }

func (a *Flutter) AppliesTo(proj *project.Project) bool {
	return proj.Detected.Framework == project.FrameworkFlutter
}

const maxMainDartLines = 50

func (a *Flutter) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot
	pubspec := snap.Manifest("pubspec.yaml")

	issues = append(issues, a.checkStructure(snap)...)
	issues = append(issues, a.checkConfiguration(snap, pubspec)...)
	if pubspec != nil {
		issues = append(issues, a.checkDependencies(pubspec)...)
	}
	issues = append(issues, a.checkTesting(snap, pubspec)...)
	issues = append(issues, a.checkSecurity(snap)...)
	return issues, nil
}

func (a *Flutter) checkStructure(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue

	if content, err := snap.ReadFile("lib/main.dart"); err == nil {
		nonBlank := 0
		for _, line := range strings.Split(string(content), "\n") {
			if strings.TrimSpace(line) != "" {
				nonBlank++
			}
		}
		if nonBlank > maxMainDartLines {
			issues = append(issues, issue.Issue{
				ID:          "FLT-003",
				Analyzer:    a.Name(),
				Category:    issue.CategoryStructure,
				Severity:    issue.SeverityMedium,
				Title:       "lib/main.dart is too large",
				Description: fmt.Sprintf("lib/main.dart has %d non-blank lines. Business logic should be separated into dedicated files.", nonBlank),
				File:        "lib/main.dart",
				Suggestion:  "Extract widgets and business logic into separate files under lib/",
			})
		}
	}

	if snap.IsDir("lib") && !hasSubdirs(snap, "lib") {
		flat := 0
		for _, f := range snap.FilesUnder("lib") {
			if path.Dir(f) == "lib" && strings.HasSuffix(f, ".dart") {
				flat++
			}
		}
		if flat > 3 {
			issues = append(issues, issue.Issue{
				ID:          "FLT-004",
				Analyzer:    a.Name(),
				Category:    issue.CategoryStructure,
				Severity:    issue.SeverityMedium,
				Title:       "No architecture structure in lib/",
				Description: fmt.Sprintf("Found %d .dart files flat in lib/ with no subdirectories. Consider organizing code into folders.", flat),
				Suggestion:  "Create subdirectories like lib/screens/, lib/widgets/, lib/models/",
			})
		}
	}

	iconChecks := []struct {
		platform string
		iconPath string
	}{
		{"android", "android/app/src/main/res/mipmap-hdpi"},
		{"ios", "ios/Runner/Assets.xcassets/AppIcon.appiconset"},
	}
	for _, c := range iconChecks {
		if snap.IsDir(c.platform) && !snap.IsDir(c.iconPath) {
			issues = append(issues, issue.Issue{
				ID:          "FLT-052",
				Analyzer:    a.Name(),
				Category:    issue.CategoryStructure,
				Severity:    issue.SeverityLow,
				Title:       fmt.Sprintf("Missing %s icon assets", c.platform),
				Description: fmt.Sprintf("%s platform directory exists but icon assets at %s are missing.", c.platform, c.iconPath),
				Suggestion:  fmt.Sprintf("Add proper icon assets for %s platform", c.platform),
			})
		}
	}

	if content, err := snap.ReadFile(".gitignore"); err == nil {
		required := []string{"build/", ".dart_tool/", ".flutter-plugins"}
		var missing []string
		for _, entry := range required {
			base := strings.TrimSuffix(entry, "/")
			found := false
			for _, line := range strings.Split(string(content), "\n") {
				t := strings.TrimSpace(line)
				if t == entry || t == "/"+entry || t == base {
					found = true
					break
				}
			}
			if !found {
				missing = append(missing, entry)
			}
		}
		if len(missing) > 0 {
			issues = append(issues, issue.Issue{
				ID:          "FLT-053",
				Analyzer:    a.Name(),
				Category:    issue.CategoryStructure,
				Severity:    issue.SeverityMedium,
				Title:       fmt.Sprintf(".gitignore missing: %s", strings.Join(missing, ", ")),
				Description: fmt.Sprintf(".gitignore should include %s for Flutter projects.", strings.Join(missing, ", ")),
				File:        ".gitignore",
				Suggestion:  fmt.Sprintf("Add %s to .gitignore", strings.Join(missing, ", ")),
				AutoFixable: true,
			})
		}
	}

	return issues
}

func hasSubdirs(snap *project.Snapshot, dir string) bool {
	prefix := dir + "/"
	for _, d := range snap.Dirs {
		if strings.HasPrefix(d, prefix) {
			return true
		}
	}
	return false
}

func (a *Flutter) checkConfiguration(snap *project.Snapshot, pubspec *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	if pubspec != nil {
		desc, ok := pubspec.String("description")
		if !ok || strings.TrimSpace(desc) == "" {
			issues = append(issues, issue.Issue{
				ID:          "FLT-010",
				Analyzer:    a.Name(),
				Category:    issue.CategoryConfiguration,
				Severity:    issue.SeverityLow,
				Title:       "Missing description in pubspec.yaml",
				Description: "pubspec.yaml is missing a description field.",
				File:        "pubspec.yaml",
				Suggestion:  "Add a meaningful description field to pubspec.yaml",
			})
		}

		if constraint, ok := pubspec.String("environment", "sdk"); ok {
			if major, ok := dartMajorVersion(constraint); ok && major < 3 {
				issues = append(issues, issue.Issue{
					ID:          "FLT-011",
					Analyzer:    a.Name(),
					Category:    issue.CategoryConfiguration,
					Severity:    issue.SeverityHigh,
					Title:       "SDK constraint below Dart 3.0",
					Description: fmt.Sprintf("environment.sdk is %q. Dart 3+ brings sound null safety and modern features.", constraint),
					File:        "pubspec.yaml",
					Suggestion:  "Update SDK constraint to '^3.0.0' or higher",
				})
			}
		}
	}

	if content, err := snap.ReadFile("android/app/build.gradle"); err == nil {
		if !strings.Contains(string(content), "signingConfigs") {
			issues = append(issues, issue.Issue{
				ID:          "FLT-050",
				Analyzer:    a.Name(),
				Category:    issue.CategoryConfiguration,
				Severity:    issue.SeverityMedium,
				Title:       "Android build.gradle missing signingConfigs",
				Description: "android/app/build.gradle exists but has no signingConfigs for release builds.",
				File:        "android/app/build.gradle",
				Suggestion:  "Add signingConfigs for release builds in build.gradle",
			})
		}
	}

	if snap.IsDir("ios") && !snap.HasFile("ios/Runner/Info.plist") {
		issues = append(issues, issue.Issue{
			ID:          "FLT-051",
			Analyzer:    a.Name(),
			Category:    issue.CategoryConfiguration,
			Severity:    issue.SeverityMedium,
			Title:       "Missing ios/Runner/Info.plist",
			Description: "ios/ directory exists but ios/Runner/Info.plist is missing.",
			Suggestion:  "Run `flutter create .` to regenerate iOS platform files",
		})
	}

	return issues
}

// dartMajorVersion extracts the minimum major version from constraints like
// ">=2.19.0 <4.0.0" or "^3.0.0".
func dartMajorVersion(constraint string) (int, bool) {
	v := strings.TrimSpace(constraint)
	v = strings.TrimPrefix(v, ">=")
	v = strings.TrimPrefix(v, "^")
	first, _, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(first)
	if err != nil {
		return 0, false
	}
	return major, true
}

var flutterDevOnlyPackages = []string{
	"flutter_test", "build_runner", "mockito", "flutter_lints",
	"test", "integration_test", "fake_async",
}

func (a *Flutter) checkDependencies(pubspec *project.Manifest) []issue.Issue {
	var issues []issue.Issue
	deps, _ := pubspec.Map("dependencies")

	var misplaced []string
	for _, pkg := range flutterDevOnlyPackages {
		if _, ok := deps[pkg]; ok {
			misplaced = append(misplaced, pkg)
		}
	}
	if len(misplaced) > 0 {
		issues = append(issues, issue.Issue{
			ID:          "FLT-021",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityMedium,
			Title:       fmt.Sprintf("Dev-only packages in dependencies: %s", strings.Join(misplaced, ", ")),
			Description: fmt.Sprintf("The following packages should be in dev_dependencies: %s", strings.Join(misplaced, ", ")),
			File:        "pubspec.yaml",
			Suggestion:  "Move these packages to dev_dependencies in pubspec.yaml",
		})
	}

	var gitDeps []string
	for _, name := range sortedKeys(deps) {
		if spec, ok := deps[name].(map[string]any); ok {
			if _, hasGit := spec["git"]; hasGit {
				gitDeps = append(gitDeps, name)
			}
		}
	}
	if len(gitDeps) > 0 {
		issues = append(issues, issue.Issue{
			ID:          "FLT-022",
			Analyzer:    a.Name(),
			Category:    issue.CategoryDependencies,
			Severity:    issue.SeverityLow,
			Title:       fmt.Sprintf("Git dependencies found: %s", strings.Join(gitDeps, ", ")),
			Description: "Dependencies using git: source can be unstable and hard to reproduce.",
			File:        "pubspec.yaml",
			Suggestion:  "Consider publishing packages to pub.dev or using path dependencies",
		})
	}

	return issues
}

func (a *Flutter) checkTesting(snap *project.Snapshot, pubspec *project.Manifest) []issue.Issue {
	var issues []issue.Issue

	if snap.IsDir("test") {
		hasWidgetTest := false
		for _, f := range snap.FilesUnder("test") {
			if !strings.HasSuffix(f, ".dart") {
				continue
			}
			content, err := snap.ReadFile(f)
			if err != nil {
				continue
			}
			if strings.Contains(string(content), "testWidgets") {
				hasWidgetTest = true
				break
			}
		}
		if !hasWidgetTest {
			issues = append(issues, issue.Issue{
				ID:          "FLT-030",
				Analyzer:    a.Name(),
				Category:    issue.CategoryTesting,
				Severity:    issue.SeverityHigh,
				Title:       "No widget tests found",
				Description: "test/ directory exists but no file contains testWidgets calls.",
				Suggestion:  "Add widget tests using testWidgets() for UI components",
			})
		}
	}

	if !snap.IsDir("integration_test") {
		issues = append(issues, issue.Issue{
			ID:          "FLT-031",
			Analyzer:    a.Name(),
			Category:    issue.CategoryTesting,
			Severity:    issue.SeverityMedium,
			Title:       "Missing integration_test/ directory",
			Description: "No integration_test/ directory found. Integration tests verify complete app flows.",
			Suggestion:  "Create integration_test/ and add integration tests",
			AutoFixable: true,
		})
	}

	if pubspec != nil {
		if !pubspec.Has("dependencies", "flutter_test") && !pubspec.Has("dev_dependencies", "flutter_test") {
			issues = append(issues, issue.Issue{
				ID:          "FLT-032",
				Analyzer:    a.Name(),
				Category:    issue.CategoryTesting,
				Severity:    issue.SeverityHigh,
				Title:       "Missing flutter_test dependency",
				Description: "flutter_test is not in dependencies or dev_dependencies.",
				File:        "pubspec.yaml",
				Suggestion:  "Add flutter_test to dev_dependencies in pubspec.yaml",
			})
		}
	}

	return issues
}

func (a *Flutter) checkSecurity(snap *project.Snapshot) []issue.Issue {
	var issues []issue.Issue

	for _, rel := range snap.FilesUnder("lib") {
		if !strings.HasSuffix(rel, ".dart") {
			continue
		}
		content, err := snap.ReadFile(rel)
		if err != nil {
			continue
		}
		lines := strings.Split(string(content), "\n")

		for i, line := range lines {
			pos := strings.Index(line, "http://")
			if pos < 0 || isLocalHTTP(line, pos) {
				continue
			}
			issues = append(issues, issue.Issue{
				ID:          "FLT-041",
				Analyzer:    a.Name(),
				Category:    issue.CategorySecurity,
				Severity:    issue.SeverityHigh,
				Title:       "Insecure HTTP URL found",
				Description: fmt.Sprintf("http:// URL found in %s. Use https:// for secure communication.", rel),
				File:        rel,
				Line:        i + 1,
				Suggestion:  "Replace http:// with https://",
				AutoFixable: true,
			})
			break
		}

		for i, line := range lines {
			if strings.Contains(line, "debugPrint(") {
				issues = append(issues, issue.Issue{
					ID:          "FLT-042",
					Analyzer:    a.Name(),
					Category:    issue.CategorySecurity,
					Severity:    issue.SeverityHigh,
					Title:       "debugPrint() found in lib/ code",
					Description: fmt.Sprintf("debugPrint() call found in %s. Debug output should not be in production code.", rel),
					File:        rel,
					Line:        i + 1,
					Suggestion:  "Remove debugPrint() calls or use a proper logging framework",
				})
				break
			}
		}
	}

	return issues
}

func isLocalHTTP(line string, pos int) bool {
	after := line[pos+len("http://"):]
	return strings.HasPrefix(after, "localhost") ||
		strings.HasPrefix(after, "127.0.0.1") ||
		strings.HasPrefix(after, "10.")
}
