package fixer

import (
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// directoryFixer creates missing directories reported by the structure and
// framework analyzers.
type directoryFixer struct{}

func (f *directoryFixer) Name() string { return "directory" }

var directoryRules = map[string]string{
	"STR-001": "", // directory parsed from the issue title
	"SYM-001": "src/Controller",
	"SYM-002": "src/Entity",
	"SYM-031": "tests",
	"FLT-031": "integration_test",
	"NJS-031": "__tests__",
}

func (f *directoryFixer) CanFix(is issue.Issue) bool {
	_, ok := directoryRules[is.ID]
	return ok
}

func (f *directoryFixer) Plan(is issue.Issue, _ *project.Project) (*Action, error) {
	dir := directoryRules[is.ID]
	if is.ID == "STR-001" {
		suffix, ok := strings.CutPrefix(is.Title, "Missing required directory: ")
		if !ok {
			return nil, nil
		}
		dir = suffix
	}
	if dir == "" {
		return nil, nil
	}
	return &Action{RuleIDs: []string{is.ID}, Op: OpCreateDir, Path: dir}, nil
}
