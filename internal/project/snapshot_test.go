package project

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestBuildIndexesFilesAndDirs(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "README.md", "# hi\n")
	writeFixture(t, root, "src/main.go", "package main\n")
	writeFixture(t, root, "src/util/helper.go", "package util\n")

	snap, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !snap.HasFile("README.md") {
		t.Error("expected README.md to be indexed")
	}
	if !snap.HasFile("src/util/helper.go") {
		t.Error("expected nested file to be indexed")
	}
	if !snap.IsDir("src/util") {
		t.Error("expected src/util to be indexed as a directory")
	}
	if snap.FileCount() != 3 {
		t.Errorf("FileCount = %d, want 3", snap.FileCount())
	}
	if snap.MaxDepth != 2 {
		t.Errorf("MaxDepth = %d, want 2", snap.MaxDepth)
	}
}

func TestBuildRejectsMissingRoot(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope"), nil)
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("err = %v, want ErrUnreadable", err)
	}
}

func TestBuildRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "plain.txt", "x")
	_, err := Build(filepath.Join(root, "plain.txt"), nil)
	if !errors.Is(err, ErrUnreadable) {
		t.Errorf("err = %v, want ErrUnreadable", err)
	}
}

func TestBuildSkipsDependencyDirsButRecordsThem(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "node_modules/left-pad/index.js", "x")
	writeFixture(t, root, "app.js", "x")

	snap, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !snap.IsDir("node_modules") {
		t.Error("node_modules should be recorded as present")
	}
	if snap.HasFile("node_modules/left-pad/index.js") {
		t.Error("files under node_modules should not be indexed")
	}
}

func TestBuildHonorsIgnoreGlobs(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "docs/generated/api.md", "x")
	writeFixture(t, root, "docs/intro.md", "x")

	snap, err := Build(root, []string{"docs/generated/**"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if snap.HasFile("docs/generated/api.md") {
		t.Error("ignored glob path should not be indexed")
	}
	if !snap.HasFile("docs/intro.md") {
		t.Error("non-ignored sibling should be indexed")
	}
}

func TestReadFileOnlyServesIndexedFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "a.txt", "hello")

	snap, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, err := snap.ReadFile("a.txt")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}

	if _, err := snap.ReadFile("missing.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) err = %v, want fs.ErrNotExist", err)
	}
}

func TestFilesWithSuffixAndFilesUnder(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "tests/unit_test.py", "x")
	writeFixture(t, root, "tests/helper.py", "x")
	writeFixture(t, root, "main.py", "x")

	snap, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	py := snap.FilesWithSuffix(".py")
	if len(py) != 3 {
		t.Errorf("FilesWithSuffix(.py) = %v, want 3 entries", py)
	}
	under := snap.FilesUnder("tests")
	if len(under) != 2 {
		t.Errorf("FilesUnder(tests) = %v, want 2 entries", under)
	}
}

func TestManifestParsing(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "package.json", `{"name":"demo","version":"1.2.3","scripts":{"test":"jest"}}`)
	writeFixture(t, root, "Cargo.toml", "[package]\nname = \"demo\"\nversion = \"0.4.0\"\n")
	writeFixture(t, root, "pubspec.yaml", "name: demo\nversion: 2.0.0\n")

	snap, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if v, ok := snap.Manifest("package.json").String("version"); !ok || v != "1.2.3" {
		t.Errorf("package.json version = %q, %v", v, ok)
	}
	if v, ok := snap.Manifest("Cargo.toml").String("package", "version"); !ok || v != "0.4.0" {
		t.Errorf("Cargo.toml version = %q, %v", v, ok)
	}
	if v, ok := snap.Manifest("pubspec.yaml").String("version"); !ok || v != "2.0.0" {
		t.Errorf("pubspec.yaml version = %q, %v", v, ok)
	}
	if !snap.Manifest("package.json").Has("scripts", "test") {
		t.Error("expected scripts.test to be present")
	}
	if snap.Manifest("composer.json").Has("require") {
		t.Error("missing manifest should answer false")
	}
}

func TestManifestParseFailureWarns(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "package.json", "{not json")

	snap, err := Build(root, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(snap.Warnings) == 0 {
		t.Error("expected a warning for the malformed manifest")
	}
	if snap.Manifest("package.json").Has("name") {
		t.Error("malformed manifest should not expose keys")
	}
}
