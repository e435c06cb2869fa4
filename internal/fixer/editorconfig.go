package fixer

import (
	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// editorConfigFixer writes a standard .editorconfig when CFG-002 fires.
type editorConfigFixer struct{}

const editorConfigTemplate = `root = true

[*]
indent_style = space
indent_size = 4
end_of_line = lf
charset = utf-8
trim_trailing_whitespace = true
insert_final_newline = true
`

func (f *editorConfigFixer) Name() string { return "editorconfig" }

func (f *editorConfigFixer) CanFix(is issue.Issue) bool {
	return is.ID == "CFG-002"
}

func (f *editorConfigFixer) Plan(is issue.Issue, _ *project.Project) (*Action, error) {
	return &Action{
		RuleIDs: []string{is.ID},
		Op:      OpCreateFile,
		Path:    ".editorconfig",
		Content: editorConfigTemplate,
	}, nil
}
