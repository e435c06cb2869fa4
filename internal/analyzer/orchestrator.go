package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

const (
	// defaultConcurrency bounds how many analyzers run at once.
	defaultConcurrency = 4

	minBudget     = 5 * time.Second
	maxBudget     = 30 * time.Second
	budgetPerFile = 5 * time.Millisecond
)

// Options tunes an orchestrator run.
type Options struct {
	// Only restricts the run to the named analyzers. Empty means all.
	Only []string
	// Timeout overrides the derived global budget when positive.
	Timeout time.Duration
	// Concurrency bounds parallel analyzers. Zero means the default.
	Concurrency int
}

// Orchestrator runs a set of analyzers concurrently against one project
// snapshot and merges their findings into a single filtered, ordered list.
type Orchestrator struct {
	analyzers []Analyzer
	opts      Options
}

func NewOrchestrator(analyzers []Analyzer, opts Options) *Orchestrator {
	return &Orchestrator{analyzers: analyzers, opts: opts}
}

// Budget derives the global time budget from repository size.
func Budget(fileCount int) time.Duration {
	d := minBudget + time.Duration(fileCount)*budgetPerFile
	if d > maxBudget {
		return maxBudget
	}
	return d
}

// Run executes the applicable analyzers and returns the final issue list:
// analyzer findings plus custom-rule matches, filtered by the ruleset's
// ignore lists and severity threshold, in deterministic order.
//
// A single analyzer timing out or failing does not fail the run; it
// contributes a synthetic issue instead so the score reflects the reduced
// coverage.
func (o *Orchestrator) Run(ctx context.Context, proj *project.Project, rules *config.Ruleset) ([]issue.Issue, error) {
	selected := o.selectAnalyzers(proj, rules)

	budget := o.opts.Timeout
	if budget <= 0 {
		budget = Budget(proj.Snapshot.FileCount())
	}
	softTimeout := budget / 2

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	results := make([][]issue.Issue, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	concurrency := o.opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	g.SetLimit(concurrency)

	for i, a := range selected {
		i, a := i, a
		g.Go(func() error {
			actx, acancel := context.WithTimeout(gctx, softTimeout)
			defer acancel()

			start := time.Now()
			found, err := a.Analyze(actx, proj, rules)
			elapsed := time.Since(start)

			switch {
			case err != nil && errors.Is(err, context.DeadlineExceeded):
				slog.Warn("analyzer timed out", "analyzer", a.Name(), "elapsed", elapsed)
				found = append(found, timeoutIssue(a, softTimeout))
			case err != nil:
				slog.Warn("analyzer failed", "analyzer", a.Name(), "error", err)
				found = append(found, failureIssue(a, err))
			default:
				slog.Debug("analyzer finished", "analyzer", a.Name(), "issues", len(found), "elapsed", elapsed)
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []issue.Issue
	for _, found := range results {
		merged = append(merged, found...)
	}

	custom, err := runCustomRules(ctx, proj.Snapshot, activeCustomRules(rules))
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("custom rules: %w", err)
	}
	merged = append(merged, custom...)

	filtered := filterIssues(merged, rules)
	sortIssues(filtered)
	return filtered, nil
}

func (o *Orchestrator) selectAnalyzers(proj *project.Project, rules *config.Ruleset) []Analyzer {
	only := make(map[string]bool, len(o.opts.Only))
	for _, name := range o.opts.Only {
		only[name] = true
	}

	var selected []Analyzer
	for _, a := range o.analyzers {
		if len(only) > 0 && !only[a.Name()] {
			continue
		}
		if !rules.AnalyzerEnabled(a.Name()) {
			continue
		}
		if !a.AppliesTo(proj) {
			continue
		}
		selected = append(selected, a)
	}
	return selected
}

// activeCustomRules drops custom rules whose id the ruleset also ignores.
// Ignore wins over a re-declared rule.
func activeCustomRules(rules *config.Ruleset) []config.CustomRule {
	var active []config.CustomRule
	for _, r := range rules.CustomRules {
		if !rules.RuleIgnored(r.ID) {
			active = append(active, r)
		}
	}
	return active
}

func timeoutIssue(a Analyzer, timeout time.Duration) issue.Issue {
	return issue.Issue{
		ID:          "ORC-001",
		Analyzer:    a.Name(),
		Category:    a.Category(),
		Severity:    issue.SeverityInfo,
		Title:       fmt.Sprintf("Analyzer %s timed out", a.Name()),
		Description: fmt.Sprintf("The %s analyzer exceeded its %s budget and was cancelled. Its findings are incomplete.", a.Name(), timeout),
		Suggestion:  "Re-run with a larger --timeout or scan a smaller tree",
	}
}

func failureIssue(a Analyzer, err error) issue.Issue {
	return issue.Issue{
		ID:          "ORC-002",
		Analyzer:    a.Name(),
		Category:    a.Category(),
		Severity:    issue.SeverityLow,
		Title:       fmt.Sprintf("Analyzer %s failed", a.Name()),
		Description: fmt.Sprintf("The %s analyzer reported an error: %v. Its findings are incomplete.", a.Name(), err),
	}
}

// filterIssues applies the ruleset filters in order: ignored paths, ignored
// rule ids, then the severity threshold.
func filterIssues(issues []issue.Issue, rules *config.Ruleset) []issue.Issue {
	var kept []issue.Issue
	for _, is := range issues {
		if is.File != "" && rules.PathIgnored(is.File) {
			continue
		}
		if rules.RuleIgnored(is.ID) {
			continue
		}
		if is.Severity < rules.SeverityThreshold {
			continue
		}
		kept = append(kept, is)
	}
	return kept
}

func sortIssues(issues []issue.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Analyzer != b.Analyzer {
			return a.Analyzer < b.Analyzer
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
}
