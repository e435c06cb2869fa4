package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

// Error is a fatal configuration failure. It always names the offending
// key or custom rule so the user can fix the file without guessing.
type Error struct {
	Key  string // config key, when the failure is tied to one
	Rule string // custom rule id, when the failure is tied to one
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Rule != "":
		return fmt.Sprintf("config: custom rule %q: %v", e.Rule, e.Err)
	case e.Key != "":
		return fmt.Sprintf("config: key %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// File is the raw .repodoctor.yml schema. Presets use the same shape.
type File struct {
	Extends           string                  `yaml:"extends,omitempty"`
	SeverityThreshold string                  `yaml:"severity_threshold,omitempty"`
	FailOn            string                  `yaml:"fail_on,omitempty"`
	Ignore            IgnoreFile              `yaml:"ignore,omitempty"`
	Analyzers         map[string]AnalyzerFile `yaml:"analyzers,omitempty"`
	CustomRules       []CustomRuleFile        `yaml:"custom_rules,omitempty"`
}

// IgnoreFile lists paths and rule ids excluded from the final issue set.
type IgnoreFile struct {
	Paths []string `yaml:"paths,omitempty"`
	Rules []string `yaml:"rules,omitempty"`
}

// AnalyzerFile is a per-analyzer toggle block.
type AnalyzerFile struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// CustomRuleFile is one user-defined text-pattern rule before validation.
type CustomRuleFile struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title,omitempty"`
	Pattern    string `yaml:"pattern"`
	Files      string `yaml:"files,omitempty"`
	Severity   string `yaml:"severity,omitempty"`
	Suggestion string `yaml:"suggestion,omitempty"`
}

// Load searches for .repodoctor.yml or .repodoctor.yaml in the given
// directory. Returns nil when no file is found; a repo without a config
// file runs on the preset alone.
func Load(dir string) (*File, error) {
	candidates := []string{
		filepath.Join(dir, ".repodoctor.yml"),
		filepath.Join(dir, ".repodoctor.yaml"),
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &Error{Key: path, Err: err}
		}

		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, &Error{Key: path, Err: err}
		}
		return &f, nil
	}

	return nil, nil
}

// CustomRule is a validated user-defined rule ready for evaluation.
type CustomRule struct {
	ID         string
	Title      string
	Severity   issue.Severity
	Files      string // doublestar glob, empty matches every file
	Pattern    *regexp.Regexp
	Suggestion string
}

// AppliesTo reports whether the rule's file glob covers the given
// slash-relative path.
func (c CustomRule) AppliesTo(rel string) bool {
	if c.Files == "" {
		return true
	}
	ok, err := doublestar.Match(c.Files, rel)
	return err == nil && ok
}

// Ruleset is the fully merged, validated configuration for one scan.
// Nothing mutates it after Resolve returns.
type Ruleset struct {
	Preset            string
	SeverityThreshold issue.Severity
	FailOn            issue.Severity
	IgnorePaths       []string
	IgnoreRules       []string
	Analyzers         map[string]AnalyzerFile
	CustomRules       []CustomRule
}

// AnalyzerEnabled reports the effective toggle for an analyzer name.
// Analyzers are enabled unless explicitly switched off.
func (r *Ruleset) AnalyzerEnabled(name string) bool {
	a, ok := r.Analyzers[name]
	if !ok || a.Enabled == nil {
		return true
	}
	return *a.Enabled
}

// RuleIgnored reports whether a rule id is excluded. Ignoring a rule id
// also silences a custom rule that re-declares the same id.
func (r *Ruleset) RuleIgnored(id string) bool {
	for _, ig := range r.IgnoreRules {
		if ig == id {
			return true
		}
	}
	return false
}

// PathIgnored reports whether a slash-relative path matches any
// ignore.paths glob.
func (r *Ruleset) PathIgnored(rel string) bool {
	for _, g := range r.IgnorePaths {
		if ok, err := doublestar.Match(g, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// Overrides carries the CLI flag layer, the highest-precedence merge
// input.
type Overrides struct {
	SeverityThreshold string
	FailOn            string
	IgnorePaths       []string
	IgnoreRules       []string
}

// Resolve merges, lowest to highest precedence: built-in defaults, the
// named preset, the repo file's extends target (one level), the repo
// file's own keys, then CLI overrides. Scalar keys are last-writer-wins;
// ignore.paths, ignore.rules and custom_rules are unioned across layers.
// Any invalid key or custom rule aborts with *Error before a scan runs.
func Resolve(presetName string, repo *File, ov Overrides) (*Ruleset, error) {
	if presetName == "" {
		presetName = PresetBalanced
	}
	preset, ok := presets[presetName]
	if !ok {
		return nil, &Error{Key: "preset", Err: fmt.Errorf("unknown preset %q", presetName)}
	}

	merged := defaults()
	mergeFile(&merged, preset)

	if repo != nil {
		if repo.Extends != "" {
			base, ok := presets[repo.Extends]
			if !ok {
				return nil, &Error{Key: "extends", Err: fmt.Errorf("unknown preset %q", repo.Extends)}
			}
			mergeFile(&merged, base)
		}
		mergeFile(&merged, *repo)
	}

	mergeFile(&merged, File{
		SeverityThreshold: ov.SeverityThreshold,
		FailOn:            ov.FailOn,
		Ignore:            IgnoreFile{Paths: ov.IgnorePaths, Rules: ov.IgnoreRules},
	})

	return compile(presetName, merged)
}

func mergeFile(dst *File, src File) {
	if src.SeverityThreshold != "" {
		dst.SeverityThreshold = src.SeverityThreshold
	}
	if src.FailOn != "" {
		dst.FailOn = src.FailOn
	}
	dst.Ignore.Paths = unionStrings(dst.Ignore.Paths, src.Ignore.Paths)
	dst.Ignore.Rules = unionStrings(dst.Ignore.Rules, src.Ignore.Rules)
	for name, a := range src.Analyzers {
		if a.Enabled == nil {
			continue
		}
		if dst.Analyzers == nil {
			dst.Analyzers = make(map[string]AnalyzerFile)
		}
		dst.Analyzers[name] = a
	}
	for _, cr := range src.CustomRules {
		if !containsRuleID(dst.CustomRules, cr.ID) {
			dst.CustomRules = append(dst.CustomRules, cr)
		}
	}
}

func unionStrings(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

func containsRuleID(rules []CustomRuleFile, id string) bool {
	for _, r := range rules {
		if r.ID == id {
			return true
		}
	}
	return false
}

func compile(presetName string, f File) (*Ruleset, error) {
	rs := &Ruleset{
		Preset:      presetName,
		IgnorePaths: f.Ignore.Paths,
		IgnoreRules: f.Ignore.Rules,
		Analyzers:   f.Analyzers,
	}

	var err error
	if rs.SeverityThreshold, err = issue.ParseSeverity(orToken(f.SeverityThreshold, "info")); err != nil {
		return nil, &Error{Key: "severity_threshold", Err: err}
	}
	if rs.FailOn, err = issue.ParseSeverity(orToken(f.FailOn, "high")); err != nil {
		return nil, &Error{Key: "fail_on", Err: err}
	}

	for _, g := range f.Ignore.Paths {
		if !doublestar.ValidatePattern(g) {
			return nil, &Error{Key: "ignore.paths", Err: fmt.Errorf("invalid glob %q", g)}
		}
	}

	for _, cr := range f.CustomRules {
		compiled, err := compileRule(cr)
		if err != nil {
			return nil, err
		}
		rs.CustomRules = append(rs.CustomRules, compiled)
	}

	return rs, nil
}

func compileRule(cr CustomRuleFile) (CustomRule, error) {
	if cr.ID == "" {
		return CustomRule{}, &Error{Key: "custom_rules", Err: fmt.Errorf("rule without an id")}
	}
	if cr.Pattern == "" {
		return CustomRule{}, &Error{Rule: cr.ID, Err: fmt.Errorf("empty pattern")}
	}
	re, err := regexp.Compile(cr.Pattern)
	if err != nil {
		return CustomRule{}, &Error{Rule: cr.ID, Err: fmt.Errorf("invalid pattern: %w", err)}
	}
	if cr.Files != "" && !doublestar.ValidatePattern(cr.Files) {
		return CustomRule{}, &Error{Rule: cr.ID, Err: fmt.Errorf("invalid file glob %q", cr.Files)}
	}
	sev := issue.SeverityMedium
	if cr.Severity != "" {
		if sev, err = issue.ParseSeverity(cr.Severity); err != nil {
			return CustomRule{}, &Error{Rule: cr.ID, Err: err}
		}
	}
	title := cr.Title
	if title == "" {
		title = fmt.Sprintf("Custom rule %s matched", cr.ID)
	}
	return CustomRule{
		ID:         cr.ID,
		Title:      title,
		Severity:   sev,
		Files:      cr.Files,
		Pattern:    re,
		Suggestion: cr.Suggestion,
	}, nil
}

func orToken(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
