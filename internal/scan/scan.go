// Package scan is the entry point a caller uses to diagnose a repository:
// it resolves configuration, snapshots the tree, runs the analyzer
// orchestrator, and scores the findings. Commands and CI integrations
// consume the Result. The only file a scan writes is the fingerprint
// cache at the root, and the snapshot never indexes it.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Jonathanlight/repodoctor/internal/analyzer"
	"github.com/Jonathanlight/repodoctor/internal/cache"
	"github.com/Jonathanlight/repodoctor/internal/config"
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
	"github.com/Jonathanlight/repodoctor/internal/score"
)

// Options is the CLI-facing knob set for one scan.
type Options struct {
	// Preset names the base ruleset; empty means balanced.
	Preset string
	// Severity overrides the reporting threshold (info, low, ...).
	Severity string
	// FailOn overrides the CI gate severity.
	FailOn string
	// IgnorePaths and IgnoreRules are added on top of the config file.
	IgnorePaths []string
	IgnoreRules []string
	// Only restricts the run to the named analyzers.
	Only []string
	// NoCache disables the on-disk fingerprint cache.
	NoCache bool
	// Timeout overrides the derived global budget when positive.
	Timeout time.Duration
	// Concurrency bounds parallel analyzers. Zero means the default.
	Concurrency int
}

// Result is everything one scan produced.
type Result struct {
	Root      string
	Detected  project.Detection
	Ruleset   *config.Ruleset
	Issues    []issue.Issue
	Score     score.HealthScore
	Warnings  []string
	FileCount int
	Duration  time.Duration
}

// Passes reports whether the issue list clears the CI gate: no issue at or
// above failOn severity.
func (r *Result) Passes(failOn issue.Severity) bool {
	for _, is := range r.Issues {
		if is.Severity >= failOn {
			return false
		}
	}
	return true
}

// Run performs a full diagnostic scan of the repository at root.
// Configuration problems abort before any analysis; a missing or corrupt
// cache never does.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	start := time.Now()

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	repoFile, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	rules, err := config.Resolve(opts.Preset, repoFile, config.Overrides{
		SeverityThreshold: opts.Severity,
		FailOn:            opts.FailOn,
		IgnorePaths:       opts.IgnorePaths,
		IgnoreRules:       opts.IgnoreRules,
	})
	if err != nil {
		return nil, err
	}

	snap, err := project.Build(root, buildIgnores(rules))
	if err != nil {
		return nil, err
	}
	proj := project.New(snap)
	slog.Debug("snapshot built",
		"files", snap.FileCount(),
		"framework", proj.Detected.Framework,
		"preset", rules.Preset)

	var store *cache.Store
	if !opts.NoCache {
		store = cache.Load(filepath.Join(root, cache.DefaultFileName))
	}

	analyzers := analyzer.All()
	if store != nil {
		for _, a := range analyzers {
			if sec, ok := a.(*analyzer.Security); ok {
				sec.Cache = store
			}
		}
	}

	orch := analyzer.NewOrchestrator(analyzers, analyzer.Options{
		Only:        opts.Only,
		Timeout:     opts.Timeout,
		Concurrency: opts.Concurrency,
	})
	issues, err := orch.Run(ctx, proj, rules)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.Save(); err != nil {
			slog.Warn("cache not saved", "error", err)
		}
	}

	result := &Result{
		Root:      root,
		Detected:  proj.Detected,
		Ruleset:   rules,
		Issues:    issues,
		Score:     score.Calculate(issues),
		Warnings:  snap.Warnings,
		FileCount: snap.FileCount(),
		Duration:  time.Since(start),
	}
	slog.Debug("scan finished",
		"issues", len(result.Issues),
		"score", result.Score.Total,
		"duration", result.Duration)
	return result, nil
}

// Project rebuilds the snapshot view of a scanned root for the fix
// command, which plans against the same tree the scan saw.
func Project(root string, rules *config.Ruleset) (*project.Project, error) {
	snap, err := project.Build(root, buildIgnores(rules))
	if err != nil {
		return nil, err
	}
	return project.New(snap), nil
}

// buildIgnores extends the configured ignore globs with the cache file a
// previous run may have left at the root, so consecutive scans of an
// unchanged repository index the same tree.
func buildIgnores(rules *config.Ruleset) []string {
	ignores := make([]string, 0, len(rules.IgnorePaths)+1)
	ignores = append(ignores, rules.IgnorePaths...)
	return append(ignores, cache.DefaultFileName)
}
