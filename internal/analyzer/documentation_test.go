package analyzer

import (
	"strings"
	"testing"
)

func TestDocumentationShortReadme(t *testing.T) {
	proj := buildProject(t, map[string]string{"README.md": "# Title\n"})
	issues := runAnalyzer(t, &Documentation{}, proj)

	if !hasIssue(issues, "DOC-001") {
		t.Error("expected DOC-001 for a short README")
	}
	// Section checks only apply to READMEs long enough to have sections.
	if hasIssue(issues, "DOC-002") || hasIssue(issues, "DOC-006") {
		t.Error("section checks should not fire on a short README")
	}
}

func TestDocumentationGoodReadme(t *testing.T) {
	content := "# My Project\n\nDescription here.\n\n## Installation\n\nRun install.\n\n## Usage\n\nUse it.\n"
	proj := buildProject(t, map[string]string{"README.md": content})
	issues := runAnalyzer(t, &Documentation{}, proj)

	for _, id := range []string{"DOC-001", "DOC-002", "DOC-006"} {
		if hasIssue(issues, id) {
			t.Errorf("unexpected %s on a complete README", id)
		}
	}
}

func TestDocumentationMissingUsageSection(t *testing.T) {
	content := "# My Project\n\nDescription here.\n\n## Installation\n\nRun install.\n\nMore details.\n"
	proj := buildProject(t, map[string]string{"README.md": content})
	issues := runAnalyzer(t, &Documentation{}, proj)

	doc006 := findIssue(t, issues, "DOC-006")
	if !strings.Contains(doc006.Title, "Usage") {
		t.Errorf("title = %q", doc006.Title)
	}
	if hasIssue(issues, "DOC-002") {
		t.Error("DOC-002 should not fire when install is mentioned")
	}
}

func TestDocumentationCommunityFiles(t *testing.T) {
	proj := buildProject(t, map[string]string{"README.md": "# x\n"})
	issues := runAnalyzer(t, &Documentation{}, proj)

	if !hasIssue(issues, "DOC-003") {
		t.Error("expected DOC-003 for missing CONTRIBUTING.md")
	}
	if !hasIssue(issues, "DOC-005") {
		t.Error("expected DOC-005 for missing CODE_OF_CONDUCT.md")
	}

	withFiles := buildProject(t, map[string]string{
		"README.md":          "# x\n",
		"CONTRIBUTING.md":    "# Contributing\nGuidelines here.\n",
		"CODE_OF_CONDUCT.md": "# Code of Conduct\n",
	})
	issues = runAnalyzer(t, &Documentation{}, withFiles)
	if hasIssue(issues, "DOC-003") || hasIssue(issues, "DOC-005") {
		t.Error("community file checks fired despite files present")
	}
}

func TestDocumentationStubLicense(t *testing.T) {
	proj := buildProject(t, map[string]string{"LICENSE": "MIT\n"})
	issues := runAnalyzer(t, &Documentation{}, proj)

	doc004 := findIssue(t, issues, "DOC-004")
	if doc004.File != "LICENSE" {
		t.Errorf("file = %q, want LICENSE", doc004.File)
	}

	full := buildProject(t, map[string]string{
		"LICENSE": strings.Repeat("Permission is hereby granted, free of charge. ", 5),
	})
	issues = runAnalyzer(t, &Documentation{}, full)
	if hasIssue(issues, "DOC-004") {
		t.Error("DOC-004 fired on a full license text")
	}
}
