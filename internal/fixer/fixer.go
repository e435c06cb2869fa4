// Package fixer turns auto-fixable issues into filesystem mutations. A scan
// produces issues; BuildPlan maps the fixable ones onto a Plan of actions
// that can be previewed without touching disk and applied as a transactional
// batch: each action is idempotent, records its inverse before mutating, and
// a failure rolls back everything applied so far.
package fixer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// Op is the kind of mutation an Action performs.
type Op int

const (
	// OpCreateDir creates a directory (and missing parents).
	OpCreateDir Op = iota
	// OpCreateFile writes a new file; it never overwrites.
	OpCreateFile
	// OpAppendLines appends missing lines to an existing file, creating
	// it when absent.
	OpAppendLines
)

func (op Op) String() string {
	switch op {
	case OpCreateDir:
		return "create directory"
	case OpCreateFile:
		return "create file"
	case OpAppendLines:
		return "append to"
	}
	return "unknown"
}

// Action is one planned mutation. Path is relative to the plan root.
// Content is the full file body for OpCreateFile; Entries are the lines for
// OpAppendLines. baseHash pins the file content the plan was built against
// so an external modification between plan and apply is detected instead of
// overwritten.
type Action struct {
	RuleIDs []string
	Op      Op
	Path    string
	Content string
	Entries []string

	baseHash string
}

// Fixer plans the repair for the issue ids it recognizes. Plan may return
// (nil, nil) when the issue carries too little information to act on; the
// issue is then reported as not fixable rather than failing the batch.
type Fixer interface {
	Name() string
	CanFix(is issue.Issue) bool
	Plan(is issue.Issue, proj *project.Project) (*Action, error)
}

// Default returns the fixer catalog in matching order.
func Default() []Fixer {
	return []Fixer{
		&directoryFixer{},
		&gitignoreFixer{},
		&editorConfigFixer{},
	}
}

// Plan is an ordered, previewable batch of actions for one invocation.
type Plan struct {
	root    string
	Actions []*Action

	// NotFixable holds auto-fixable issues no fixer could plan for.
	NotFixable []issue.Issue
}

// BuildPlan selects, for every auto-fixable issue, the first fixer whose
// CanFix matches and collects the planned actions. Actions targeting the
// same file are merged into a single mutation so one cannot overwrite
// another.
func BuildPlan(proj *project.Project, issues []issue.Issue, fixers []Fixer) *Plan {
	plan := &Plan{root: proj.Snapshot.Root}

	for _, is := range issues {
		if !is.AutoFixable {
			continue
		}
		fx := matchFixer(fixers, is)
		if fx == nil {
			plan.NotFixable = append(plan.NotFixable, is)
			continue
		}
		action, err := fx.Plan(is, proj)
		if err != nil || action == nil {
			plan.NotFixable = append(plan.NotFixable, is)
			continue
		}
		plan.add(action)
	}
	return plan
}

func matchFixer(fixers []Fixer, is issue.Issue) Fixer {
	for _, fx := range fixers {
		if fx.CanFix(is) {
			return fx
		}
	}
	return nil
}

// add merges the action into the plan, folding it into an earlier action on
// the same path when both touch a file.
func (p *Plan) add(action *Action) {
	for _, existing := range p.Actions {
		if existing.Path != action.Path {
			continue
		}
		existing.merge(action)
		return
	}
	p.Actions = append(p.Actions, action)
}

func (a *Action) merge(other *Action) {
	a.RuleIDs = append(a.RuleIDs, other.RuleIDs...)

	switch {
	case a.Op == OpCreateDir && other.Op == OpCreateDir:
		// Same directory twice, nothing else to fold.
	case a.Op == OpCreateFile && other.Op == OpAppendLines:
		for _, entry := range other.Entries {
			if !containsLine(a.Content, entry) {
				a.Content += entry + "\n"
			}
		}
	case a.Op == OpAppendLines && other.Op == OpCreateFile:
		// Issues are severity-sorted, so an append can precede the create
		// for the same missing file. Fold both into one create.
		content := other.Content
		for _, entry := range a.Entries {
			if !containsLine(content, entry) {
				content += entry + "\n"
			}
		}
		a.Op = OpCreateFile
		a.Content = content
		a.Entries = nil
		a.baseHash = ""
	case a.Op == OpAppendLines && other.Op == OpAppendLines:
		for _, entry := range other.Entries {
			if !containsEntry(a.Entries, entry) {
				a.Entries = append(a.Entries, entry)
			}
		}
	}
}

// Empty reports whether the plan has no actions to apply.
func (p *Plan) Empty() bool { return len(p.Actions) == 0 }

// Preview renders the planned mutations as text. It never touches the
// filesystem.
func (p *Plan) Preview() string {
	var b strings.Builder
	for _, action := range p.Actions {
		fmt.Fprintf(&b, "[%s] %s %s\n", strings.Join(action.RuleIDs, ", "), action.Op, action.Path)
		switch action.Op {
		case OpCreateFile:
			for _, line := range splitLines(action.Content) {
				fmt.Fprintf(&b, "  + %s\n", line)
			}
		case OpAppendLines:
			for _, entry := range action.Entries {
				fmt.Fprintf(&b, "  + %s\n", entry)
			}
		}
	}
	for _, is := range p.NotFixable {
		fmt.Fprintf(&b, "[%s] no automatic fix available\n", is.ID)
	}
	return b.String()
}

func splitLines(content string) []string {
	return strings.Split(strings.TrimRight(content, "\n"), "\n")
}

func containsLine(content, entry string) bool {
	return containsEntry(splitLines(content), entry)
}

func containsEntry(lines []string, entry string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == entry {
			return true
		}
	}
	return false
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
