package analyzer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Testing checks that a test directory exists, the test runner is
// configured, and the test-to-source file ratio is not alarmingly low.
type Testing struct{}

func (a *Testing) Name() string              { return "testing" }
func (a *Testing) Description() string       { return "Checks testing setup, configuration, and coverage" }
func (a *Testing) Category() issue.Category  { return issue.CategoryTesting }

func (a *Testing) AppliesTo(_ *project.Project) bool { return true }

func testDirs(fw project.Framework) []string {
	switch fw {
	case project.FrameworkSymfony, project.FrameworkLaravel:
		return []string{"tests"}
	case project.FrameworkFlutter:
		return []string{"test"}
	case project.FrameworkNextJS, project.FrameworkNodeJS:
		return []string{"__tests__", "tests", "test", "spec"}
	case project.FrameworkRustCargo:
		return []string{"tests"}
	case project.FrameworkPython:
		return []string{"tests", "test"}
	default:
		return []string{"tests", "test", "__tests__", "spec"}
	}
}

func testConfigs(fw project.Framework) []string {
	switch fw {
	case project.FrameworkSymfony, project.FrameworkLaravel:
		return []string{"phpunit.xml", "phpunit.xml.dist"}
	case project.FrameworkFlutter:
		return []string{"test"}
	case project.FrameworkNextJS, project.FrameworkNodeJS:
		return []string{
			"jest.config.js", "jest.config.ts",
			"vitest.config.js", "vitest.config.ts",
			".mocharc.yml", ".mocharc.json",
		}
	case project.FrameworkPython:
		return []string{"pytest.ini", "pyproject.toml", "setup.cfg", "tox.ini"}
	default:
		return nil
	}
}

func sourceExtensions(fw project.Framework) []string {
	switch fw {
	case project.FrameworkSymfony, project.FrameworkLaravel:
		return []string{"php"}
	case project.FrameworkFlutter:
		return []string{"dart"}
	case project.FrameworkNextJS, project.FrameworkNodeJS:
		return []string{"js", "ts", "jsx", "tsx"}
	case project.FrameworkRustCargo:
		return []string{"rs"}
	case project.FrameworkPython:
		return []string{"py"}
	default:
		return []string{"rs", "py", "js", "ts", "php", "dart"}
	}
}

func countFilesIn(snap *project.Snapshot, dirs, extensions []string) int {
	count := 0
	for _, dir := range dirs {
		if !snap.IsDir(dir) {
			continue
		}
		for _, f := range snap.FilesUnder(dir) {
			ext := strings.TrimPrefix(path.Ext(f), ".")
			for _, want := range extensions {
				if ext == want {
					count++
					break
				}
			}
		}
	}
	return count
}

func (a *Testing) Analyze(_ context.Context, proj *project.Project, _ *config.Ruleset) ([]issue.Issue, error) {
	var issues []issue.Issue
	snap := proj.Snapshot
	fw := proj.Detected.Framework

	dirs := testDirs(fw)
	hasTestDir := false
	for _, d := range dirs {
		if snap.Exists(d) {
			hasTestDir = true
			break
		}
	}
	if !hasTestDir {
		issues = append(issues, issue.Issue{
			ID:          "TST-001",
			Analyzer:    a.Name(),
			Category:    issue.CategoryTesting,
			Severity:    issue.SeverityHigh,
			Title:       "No test directory found",
			Description: fmt.Sprintf("Expected one of: %s", strings.Join(dirs, ", ")),
			Suggestion:  fmt.Sprintf("Create a %s directory with test files", dirs[0]),
		})
	}

	if configs := testConfigs(fw); len(configs) > 0 {
		hasConfig := false
		for _, c := range configs {
			if snap.Exists(c) {
				hasConfig = true
				break
			}
		}
		if !hasConfig {
			issues = append(issues, issue.Issue{
				ID:          "TST-002",
				Analyzer:    a.Name(),
				Category:    issue.CategoryTesting,
				Severity:    issue.SeverityMedium,
				Title:       "No test configuration found",
				Description: fmt.Sprintf("Expected one of: %s", strings.Join(configs, ", ")),
				Suggestion:  "Add a test configuration file for your testing framework",
			})
		}
	}

	exts := sourceExtensions(fw)
	sourceCount := countFilesIn(snap, []string{"src", "lib", "app"}, exts)
	testCount := countFilesIn(snap, dirs, exts)

	if sourceCount > 0 && hasTestDir {
		if testCount == 0 {
			issues = append(issues, issue.Issue{
				ID:          "TST-003",
				Analyzer:    a.Name(),
				Category:    issue.CategoryTesting,
				Severity:    issue.SeverityHigh,
				Title:       "Test directory exists but contains no test files",
				Description: fmt.Sprintf("Found %d source files but 0 test files.", sourceCount),
				Suggestion:  "Add test files to cover your source code",
			})
		} else if ratio := float64(testCount) / float64(sourceCount); ratio < 0.2 {
			issues = append(issues, issue.Issue{
				ID:          "TST-004",
				Analyzer:    a.Name(),
				Category:    issue.CategoryTesting,
				Severity:    issue.SeverityMedium,
				Title:       "Low test-to-source file ratio",
				Description: fmt.Sprintf("Found %d test files for %d source files (ratio: %.0f%%). Consider adding more tests.", testCount, sourceCount, ratio*100),
				Suggestion:  "Aim for at least 1 test file per 3 source files",
			})
		}
	}

	return issues, nil
}
