package analyzer

import (
	"strings"
	"testing"

	"github.com/Jonathanlight/repodoctor/internal/issue"
	"github.com/Jonathanlight/repodoctor/internal/project"
)

const minimalPubspec = `name: app
description: A test application
environment:
  sdk: ^3.0.0
dependencies:
  flutter:
    sdk: flutter
dev_dependencies:
  flutter_test:
    sdk: flutter
`

func flutterProject(t *testing.T, files map[string]string, dirs ...string) *project.Project {
	t.Helper()
	if _, ok := files["pubspec.yaml"]; !ok {
		files["pubspec.yaml"] = minimalPubspec
	}
	return buildProject(t, files, dirs...)
}

func TestFlutterOversizedMainDart(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 60; i++ {
		b.WriteString("import 'dart:async';\n")
	}
	proj := flutterProject(t, map[string]string{"lib/main.dart": b.String()})
	issues := runAnalyzer(t, &Flutter{}, proj)

	flt003 := findIssue(t, issues, "FLT-003")
	if flt003.File != "lib/main.dart" {
		t.Errorf("file = %q", flt003.File)
	}

	small := flutterProject(t, map[string]string{"lib/main.dart": "void main() {}\n"})
	issues = runAnalyzer(t, &Flutter{}, small)
	if hasIssue(issues, "FLT-003") {
		t.Error("FLT-003 fired on a small main.dart")
	}
}

func TestFlutterFlatLibLayout(t *testing.T) {
	proj := flutterProject(t, map[string]string{
		"lib/main.dart": "void main() {}\n",
		"lib/a.dart":    "// a\n",
		"lib/b.dart":    "// b\n",
		"lib/c.dart":    "// c\n",
	})
	issues := runAnalyzer(t, &Flutter{}, proj)
	if !hasIssue(issues, "FLT-004") {
		t.Error("expected FLT-004 for four flat files and no subdirectories")
	}

	organized := flutterProject(t, map[string]string{
		"lib/main.dart":            "void main() {}\n",
		"lib/screens/home.dart":    "// home\n",
		"lib/widgets/button.dart":  "// button\n",
		"lib/models/settings.dart": "// settings\n",
	})
	issues = runAnalyzer(t, &Flutter{}, organized)
	if hasIssue(issues, "FLT-004") {
		t.Error("FLT-004 fired on an organized lib/")
	}
}

func TestFlutterGitignoreEntries(t *testing.T) {
	proj := flutterProject(t, map[string]string{
		".gitignore": "build/\n.dart_tool/\n",
	})
	issues := runAnalyzer(t, &Flutter{}, proj)

	flt053 := findIssue(t, issues, "FLT-053")
	if !flt053.AutoFixable {
		t.Error("FLT-053 should be auto-fixable")
	}
	if !strings.Contains(flt053.Title, ".flutter-plugins") {
		t.Errorf("title = %q, want .flutter-plugins named", flt053.Title)
	}

	complete := flutterProject(t, map[string]string{
		".gitignore": "build/\n.dart_tool/\n.flutter-plugins\n",
	})
	issues = runAnalyzer(t, &Flutter{}, complete)
	if hasIssue(issues, "FLT-053") {
		t.Error("FLT-053 fired with all entries present")
	}
}

func TestFlutterPubspecChecks(t *testing.T) {
	proj := flutterProject(t, map[string]string{
		"pubspec.yaml": "name: app\nenvironment:\n  sdk: '>=2.12.0 <3.0.0'\ndependencies:\n  flutter_test:\n    sdk: flutter\n",
	})
	issues := runAnalyzer(t, &Flutter{}, proj)

	if !hasIssue(issues, "FLT-010") {
		t.Error("expected FLT-010 without a description")
	}
	flt011 := findIssue(t, issues, "FLT-011")
	if flt011.Severity != issue.SeverityHigh {
		t.Errorf("severity = %s, want high", flt011.Severity)
	}
	flt021 := findIssue(t, issues, "FLT-021")
	if !strings.Contains(flt021.Title, "flutter_test") {
		t.Errorf("title = %q", flt021.Title)
	}
}

func TestFlutterGitDependency(t *testing.T) {
	proj := flutterProject(t, map[string]string{
		"pubspec.yaml": minimalPubspec + "  my_fork:\n    git:\n      url: https://example.com/fork.git\n",
	})
	issues := runAnalyzer(t, &Flutter{}, proj)

	flt022 := findIssue(t, issues, "FLT-022")
	if !strings.Contains(flt022.Title, "my_fork") {
		t.Errorf("title = %q", flt022.Title)
	}
}

func TestFlutterWidgetTests(t *testing.T) {
	proj := flutterProject(t, map[string]string{
		"test/unit_test.dart": "void main() { test('x', () {}); }\n",
	})
	issues := runAnalyzer(t, &Flutter{}, proj)
	if !hasIssue(issues, "FLT-030") {
		t.Error("expected FLT-030 without testWidgets")
	}

	withWidget := flutterProject(t, map[string]string{
		"test/widget_test.dart": "void main() { testWidgets('renders', (tester) async {}); }\n",
	})
	issues = runAnalyzer(t, &Flutter{}, withWidget)
	if hasIssue(issues, "FLT-030") {
		t.Error("FLT-030 fired with a widget test present")
	}
}

func TestFlutterInsecureHTTP(t *testing.T) {
	proj := flutterProject(t, map[string]string{
		"lib/api.dart": "const base = 'http://api.example.com';\nconst other = 'http://api.example.com/v2';\n",
	})
	issues := runAnalyzer(t, &Flutter{}, proj)

	count := 0
	for _, is := range issues {
		if is.ID == "FLT-041" {
			count++
			if is.Line != 1 {
				t.Errorf("line = %d, want 1", is.Line)
			}
		}
	}
	if count != 1 {
		t.Errorf("got %d FLT-041 issues, want 1 per file", count)
	}

	local := flutterProject(t, map[string]string{
		"lib/api.dart": "const base = 'http://localhost:8080';\n",
	})
	issues = runAnalyzer(t, &Flutter{}, local)
	if hasIssue(issues, "FLT-041") {
		t.Error("FLT-041 fired on a localhost URL")
	}
}

func TestFlutterDebugPrint(t *testing.T) {
	proj := flutterProject(t, map[string]string{
		"lib/home.dart": "void render() {\n  debugPrint('rendering');\n}\n",
	})
	issues := runAnalyzer(t, &Flutter{}, proj)

	flt042 := findIssue(t, issues, "FLT-042")
	if flt042.Line != 2 {
		t.Errorf("line = %d, want 2", flt042.Line)
	}
}

func TestDartMajorVersion(t *testing.T) {
	cases := map[string]int{
		"^3.0.0":          3,
		">=2.19.0 <4.0.0": 2,
		">=3.1.0 <4.0.0":  3,
	}
	for constraint, want := range cases {
		major, ok := dartMajorVersion(constraint)
		if !ok || major != want {
			t.Errorf("dartMajorVersion(%q) = %d,%v, want %d", constraint, major, ok, want)
		}
	}
}
