package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonathanlight/repodoctor/internal/cache"
	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/fixer"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
	"github.com/Jonathanlight/repodoctor/internal/score"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func findByID(issues []issue.Issue, id string) *issue.Issue {
	for i := range issues {
		if issues[i].ID == id {
			return &issues[i]
		}
	}
	return nil
}

func TestRunFlagsUnhealthyRepo(t *testing.T) {
	root := writeTree(t, map[string]string{
		"config.php": "<?php\n$password = \"abc123\";\n",
	})

	res, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)

	assert.NotNil(t, findByID(res.Issues, "STR-002"), "missing README should be flagged")

	str003 := findByID(res.Issues, "STR-003")
	require.NotNil(t, str003, "missing .gitignore should be flagged")
	assert.Equal(t, issue.SeverityMedium, str003.Severity)
	assert.True(t, str003.AutoFixable)

	sec001 := findByID(res.Issues, "SEC-001")
	require.NotNil(t, sec001, "hardcoded password should be flagged")
	assert.Equal(t, issue.SeverityCritical, sec001.Severity)
	assert.False(t, sec001.AutoFixable)

	// Highest severity sorts first.
	assert.Equal(t, issue.SeverityCritical, res.Issues[0].Severity)

	assert.Less(t, res.Score.Total, 90)
	assert.NotEqual(t, score.GradeA, res.Score.Grade)
	assert.Equal(t, project.FrameworkGeneric, res.Detected.Framework)
}

func TestFixThenRescan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"config.php": "<?php\n$password = \"abc123\";\n",
	})

	res, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)
	require.NotNil(t, findByID(res.Issues, "STR-003"))

	proj, err := Project(root, res.Ruleset)
	require.NoError(t, err)
	plan := fixer.BuildPlan(proj, res.Issues, fixer.Default())
	report, err := plan.Apply()
	require.NoError(t, err)
	assert.True(t, report.Changed())

	after, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Nil(t, findByID(after.Issues, "STR-003"), ".gitignore exists now")
	assert.NotNil(t, findByID(after.Issues, "SEC-001"), "password is not auto-fixable")
	assert.Greater(t, after.Score.Total, res.Score.Total)
}

func TestRunRejectsUnknownPreset(t *testing.T) {
	root := writeTree(t, map[string]string{"README.md": "# hi\n"})

	_, err := Run(context.Background(), root, Options{Preset: "nonsense"})
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "preset", cfgErr.Key)
}

func TestRunMissingRoot(t *testing.T) {
	_, err := Run(context.Background(), filepath.Join(t.TempDir(), "absent"), Options{})
	require.Error(t, err)
}

func TestRunSeverityThreshold(t *testing.T) {
	root := writeTree(t, map[string]string{
		"config.php": "<?php\n$password = \"abc123\";\n",
	})

	res, err := Run(context.Background(), root, Options{Severity: "critical"})
	require.NoError(t, err)
	for _, is := range res.Issues {
		assert.Equal(t, issue.SeverityCritical, is.Severity)
	}
	require.NotEmpty(t, res.Issues)
}

func TestRunWritesCache(t *testing.T) {
	root := writeTree(t, map[string]string{
		"config.php": "<?php\n$password = \"abc123\";\n",
	})

	_, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, cache.DefaultFileName))

	noCacheRoot := writeTree(t, map[string]string{
		"config.php": "<?php\n$password = \"abc123\";\n",
	})
	_, err = Run(context.Background(), noCacheRoot, Options{NoCache: true})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(noCacheRoot, cache.DefaultFileName))
}

func TestRunFlagsForbiddenDistCredentials(t *testing.T) {
	root := writeTree(t, map[string]string{
		"README.md":        "# app\n",
		"dist/credentials": "token=abc\n",
	})

	res, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)

	str006 := findByID(res.Issues, "STR-006")
	require.NotNil(t, str006, "dist/credentials must be visible to the forbidden-path check")
	assert.Equal(t, issue.SeverityCritical, str006.Severity)
	assert.Equal(t, "dist/credentials", str006.File)

	// Explicit config can still exclude the path.
	quiet, err := Run(context.Background(), root, Options{IgnorePaths: []string{"dist/**"}})
	require.NoError(t, err)
	assert.Nil(t, findByID(quiet.Issues, "STR-006"))
}

func TestRunIndexesSameTreeTwice(t *testing.T) {
	root := writeTree(t, map[string]string{
		"config.php": "<?php\n$password = \"abc123\";\n",
	})

	first, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)

	// The first run leaves a cache file at the root; the rescan must not
	// count it.
	assert.FileExists(t, filepath.Join(root, cache.DefaultFileName))
	second, err := Run(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.FileCount, second.FileCount)
}

func TestRunOnlyFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"config.php": "<?php\n$password = \"abc123\";\n",
	})

	res, err := Run(context.Background(), root, Options{Only: []string{"security"}})
	require.NoError(t, err)
	for _, is := range res.Issues {
		assert.Equal(t, "security", is.Analyzer)
	}
	assert.NotNil(t, findByID(res.Issues, "SEC-001"))
}

func TestPasses(t *testing.T) {
	res := &Result{Issues: []issue.Issue{
		{ID: "DOC-003", Severity: issue.SeverityInfo},
		{ID: "STR-004", Severity: issue.SeverityLow},
		{ID: "TST-001", Severity: issue.SeverityHigh},
	}}

	assert.False(t, res.Passes(issue.SeverityHigh))
	assert.False(t, res.Passes(issue.SeverityMedium))
	assert.True(t, res.Passes(issue.SeverityCritical))

	clean := &Result{}
	assert.True(t, clean.Passes(issue.SeverityLow))
}
