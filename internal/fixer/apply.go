package fixer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Error reports the action that broke an apply batch. The batch has been
// rolled back by the time the caller sees it.
type Error struct {
	RuleIDs []string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fix %s (%s): %v", e.Path, strings.Join(e.RuleIDs, ", "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrConflict marks a file that changed on disk between plan and apply.
var ErrConflict = errors.New("file modified since the plan was built")

// Result is the per-action outcome inside a Report.
type Result struct {
	RuleIDs []string
	Path    string
	Detail  string
}

// Report summarizes one Apply invocation.
type Report struct {
	Applied    []Result
	Skipped    []Result
	Failed     *Result
	RolledBack bool
}

// Changed reports whether the batch mutated the filesystem.
func (r *Report) Changed() bool { return len(r.Applied) > 0 && !r.RolledBack }

// Apply executes the plan sequentially. Each action is idempotent: one whose
// outcome is already on disk is skipped, not failed. Before mutating, every
// action records its inverse; on the first failure all previously applied
// actions are undone in reverse order and the returned error names the
// action that failed. The filesystem is never left half-fixed.
func (p *Plan) Apply() (*Report, error) {
	report := &Report{}
	var undo []func() error

	rollback := func() {
		report.RolledBack = true
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](); err != nil {
				slog.Error("rollback step failed", "error", err)
			}
		}
	}

	for _, action := range p.Actions {
		inverse, detail, applied, err := p.execute(action)
		result := Result{RuleIDs: action.RuleIDs, Path: action.Path, Detail: detail}
		if err != nil {
			report.Failed = &result
			rollback()
			return report, &Error{RuleIDs: action.RuleIDs, Path: action.Path, Err: err}
		}
		if !applied {
			report.Skipped = append(report.Skipped, result)
			continue
		}
		undo = append(undo, inverse)
		report.Applied = append(report.Applied, result)
	}
	return report, nil
}

func (p *Plan) execute(action *Action) (inverse func() error, detail string, applied bool, err error) {
	abs := filepath.Join(p.root, action.Path)

	switch action.Op {
	case OpCreateDir:
		return p.createDir(abs, action)
	case OpCreateFile:
		return p.createFile(abs, action)
	case OpAppendLines:
		return p.appendLines(abs, action)
	}
	return nil, "", false, fmt.Errorf("unknown op %d", action.Op)
}

func (p *Plan) createDir(abs string, action *Action) (func() error, string, bool, error) {
	if info, err := os.Stat(abs); err == nil {
		if info.IsDir() {
			return nil, fmt.Sprintf("%s already exists", action.Path), false, nil
		}
		return nil, "", false, fmt.Errorf("%s exists and is not a directory", action.Path)
	}

	// The inverse removes the topmost component this action creates, which
	// restores the exact pre-apply tree even when parents were missing.
	top := topmostMissing(p.root, action.Path)
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, "", false, err
	}
	return func() error { return os.RemoveAll(top) },
		fmt.Sprintf("created directory %s", action.Path), true, nil
}

func (p *Plan) createFile(abs string, action *Action) (func() error, string, bool, error) {
	if _, err := os.Stat(abs); err == nil {
		return nil, fmt.Sprintf("%s already exists", action.Path), false, nil
	}
	if err := os.WriteFile(abs, []byte(action.Content), 0o644); err != nil {
		return nil, "", false, err
	}
	return func() error { return os.Remove(abs) },
		fmt.Sprintf("created %s", action.Path), true, nil
}

func (p *Plan) appendLines(abs string, action *Action) (func() error, string, bool, error) {
	current, err := os.ReadFile(abs)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, "", false, err
	}

	var missing []string
	for _, entry := range action.Entries {
		if !containsLine(string(current), entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil, fmt.Sprintf("%s already contains the entries", action.Path), false, nil
	}

	if exists {
		if hashContent(current) != action.baseHash {
			return nil, "", false, ErrConflict
		}
	} else if action.baseHash != "" {
		return nil, "", false, ErrConflict
	}

	content := string(current)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	for _, entry := range missing {
		content += entry + "\n"
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return nil, "", false, err
	}

	inverse := func() error {
		if !exists {
			return os.Remove(abs)
		}
		return os.WriteFile(abs, current, 0o644)
	}
	return inverse, fmt.Sprintf("added to %s: %s", action.Path, strings.Join(missing, ", ")), true, nil
}

// topmostMissing returns the absolute path of the first component of rel
// that does not exist under root.
func topmostMissing(root, rel string) string {
	abs := root
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		abs = filepath.Join(abs, part)
		if _, err := os.Stat(abs); err != nil {
			return abs
		}
	}
	return abs
}
