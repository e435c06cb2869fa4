package fixer

import (
	"strings"

	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

// gitignoreFixer creates a framework-appropriate .gitignore or appends the
// entries an analyzer found missing.
type gitignoreFixer struct{}

func (f *gitignoreFixer) Name() string { return "gitignore" }

var gitignoreRules = map[string]bool{
	"STR-003": true,
	"CFG-003": true,
	"SEC-003": true,
	"SYM-050": true,
	"FLT-053": true,
	"NJS-050": true,
}

func (f *gitignoreFixer) CanFix(is issue.Issue) bool {
	return gitignoreRules[is.ID]
}

func gitignoreTemplate(fw project.Framework) string {
	switch fw {
	case project.FrameworkSymfony, project.FrameworkLaravel:
		return "vendor/\nvar/\n.env\n.env.local\n"
	case project.FrameworkFlutter:
		return "build/\n.dart_tool/\n.flutter-plugins\n.flutter-plugins-dependencies\n"
	case project.FrameworkNextJS:
		return ".next/\nnode_modules/\n.env.local\n.env*.local\n"
	case project.FrameworkRustCargo:
		return "target/\n"
	}
	return ".env\n*.log\n.DS_Store\n"
}

func (f *gitignoreFixer) Plan(is issue.Issue, proj *project.Project) (*Action, error) {
	if is.ID == "STR-003" {
		return &Action{
			RuleIDs: []string{is.ID},
			Op:      OpCreateFile,
			Path:    ".gitignore",
			Content: gitignoreTemplate(proj.Detected.Framework),
		}, nil
	}

	var entries []string
	switch is.ID {
	case "CFG-003", "SEC-003":
		entries = []string{".env"}
	case "NJS-050":
		entries = []string{".env*.local"}
	case "SYM-050", "FLT-053":
		suffix, ok := strings.CutPrefix(is.Title, ".gitignore missing: ")
		if !ok {
			return nil, nil
		}
		for _, entry := range strings.Split(suffix, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				entries = append(entries, entry)
			}
		}
	}
	if len(entries) == 0 {
		return nil, nil
	}

	action := &Action{
		RuleIDs: []string{is.ID},
		Op:      OpAppendLines,
		Path:    ".gitignore",
		Entries: entries,
	}
	if content, err := proj.Snapshot.ReadFile(".gitignore"); err == nil {
		action.baseHash = hashContent(content)
	}
	return action, nil
}
