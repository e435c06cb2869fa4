package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

func TestLoadReturnsNilWhenNoFile(t *testing.T) {
	f, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestLoadParsesRepoFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "severity_threshold: high\nignore:\n  rules:\n    - DOC-003\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".repodoctor.yml"), []byte(yaml), 0o644))

	f, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "high", f.SeverityThreshold)
	assert.Equal(t, []string{"DOC-003"}, f.Ignore.Rules)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".repodoctor.yml"), []byte("ignore: [unclosed"), 0o644))

	_, err := Load(dir)
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
}

func TestResolveDefaults(t *testing.T) {
	rs, err := Resolve("", nil, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, PresetBalanced, rs.Preset)
	assert.Equal(t, issue.SeverityInfo, rs.SeverityThreshold)
	assert.Equal(t, issue.SeverityHigh, rs.FailOn)
	assert.True(t, rs.AnalyzerEnabled("security"))
	// No built-in ignore globs: every path is visible unless config says so.
	assert.Empty(t, rs.IgnorePaths)
	assert.False(t, rs.PathIgnored("dist/credentials"))
}

func TestResolveUnknownPreset(t *testing.T) {
	_, err := Resolve("paranoid", nil, Overrides{})
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "preset", cfgErr.Key)
}

func TestResolveStrictRaisesThresholdAndKeepsIgnoreUnion(t *testing.T) {
	repo := &File{
		Ignore: IgnoreFile{Paths: []string{"legacy/**"}},
	}
	rs, err := Resolve(PresetStrict, repo, Overrides{IgnorePaths: []string{"tmp/**"}})
	require.NoError(t, err)

	assert.Equal(t, issue.SeverityLow, rs.SeverityThreshold)
	assert.Equal(t, issue.SeverityMedium, rs.FailOn)
	// Repo and CLI ignore paths union rather than replace each other.
	assert.True(t, rs.PathIgnored("legacy/old.php"))
	assert.True(t, rs.PathIgnored("tmp/out.log"))
}

func TestResolveRepoOverridesScalarAndExtends(t *testing.T) {
	repo := &File{
		Extends:           PresetStrict,
		SeverityThreshold: "medium",
	}
	rs, err := Resolve("", repo, Overrides{})
	require.NoError(t, err)

	// strict sets low, the repo's own key wins with medium.
	assert.Equal(t, issue.SeverityMedium, rs.SeverityThreshold)
	// strict's fail_on carries through untouched.
	assert.Equal(t, issue.SeverityMedium, rs.FailOn)
}

func TestResolveUnknownExtendsTarget(t *testing.T) {
	_, err := Resolve("", &File{Extends: "enterprise"}, Overrides{})
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "extends", cfgErr.Key)
}

func TestResolveCLIOverridesWinLast(t *testing.T) {
	repo := &File{SeverityThreshold: "low"}
	rs, err := Resolve("", repo, Overrides{
		SeverityThreshold: "high",
		FailOn:            "critical",
		IgnoreRules:       []string{"TST-001"},
	})
	require.NoError(t, err)

	assert.Equal(t, issue.SeverityHigh, rs.SeverityThreshold)
	assert.Equal(t, issue.SeverityCritical, rs.FailOn)
	assert.True(t, rs.RuleIgnored("TST-001"))
}

func TestResolveMinimalDisablesDocumentation(t *testing.T) {
	rs, err := Resolve(PresetMinimal, nil, Overrides{})
	require.NoError(t, err)

	assert.False(t, rs.AnalyzerEnabled("documentation"))
	assert.True(t, rs.AnalyzerEnabled("structure"))
}

func TestResolveAnalyzerToggleFromRepo(t *testing.T) {
	off := false
	repo := &File{Analyzers: map[string]AnalyzerFile{"testing": {Enabled: &off}}}
	rs, err := Resolve("", repo, Overrides{})
	require.NoError(t, err)
	assert.False(t, rs.AnalyzerEnabled("testing"))
}

func TestResolveCompilesCustomRules(t *testing.T) {
	repo := &File{
		CustomRules: []CustomRuleFile{{
			ID:       "CUS-001",
			Title:    "Leftover debug print",
			Pattern:  `console\.log`,
			Files:    "src/**/*.js",
			Severity: "low",
		}},
	}
	rs, err := Resolve("", repo, Overrides{})
	require.NoError(t, err)
	require.Len(t, rs.CustomRules, 1)

	cr := rs.CustomRules[0]
	assert.Equal(t, issue.SeverityLow, cr.Severity)
	assert.True(t, cr.AppliesTo("src/app/main.js"))
	assert.False(t, cr.AppliesTo("lib/main.js"))
	assert.True(t, cr.Pattern.MatchString(`console.log("x")`))
}

func TestResolveRejectsBadCustomRules(t *testing.T) {
	cases := []struct {
		name string
		rule CustomRuleFile
	}{
		{"bad regex", CustomRuleFile{ID: "CUS-001", Pattern: "("}},
		{"bad severity", CustomRuleFile{ID: "CUS-002", Pattern: "x", Severity: "urgent"}},
		{"empty pattern", CustomRuleFile{ID: "CUS-003"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve("", &File{CustomRules: []CustomRuleFile{tc.rule}}, Overrides{})
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.rule.ID, cfgErr.Rule)
		})
	}
}

func TestResolveRejectsUnknownSeverityToken(t *testing.T) {
	_, err := Resolve("", &File{SeverityThreshold: "severe"}, Overrides{})
	var cfgErr *Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "severity_threshold", cfgErr.Key)
}
