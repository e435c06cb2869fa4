package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Jonathanlight/repodoctor/internal/issue"
)

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), DefaultFileName)
}

func TestKeyChangesWithContent(t *testing.T) {
	a := Key("src/app.php", []byte("one"))
	b := Key("src/app.php", []byte("two"))
	if a == b {
		t.Error("keys for different contents should differ")
	}
	if Key("src/app.php", []byte("one")) != a {
		t.Error("key is not deterministic")
	}
	if Key("src/other.php", []byte("one")) == a {
		t.Error("keys for different paths should differ")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := tempStorePath(t)
	found := []issue.Issue{{
		ID:       "SEC-001",
		Analyzer: "security",
		Category: issue.CategorySecurity,
		Severity: issue.SeverityCritical,
		Title:    "Potential Password found",
		File:     "config.php",
		Line:     3,
	}}

	s := Load(path)
	key := Key("config.php", []byte(`password = "hunter22"`))
	s.Put(key, found)
	s.Put(Key("clean.php", []byte("<?php")), nil)
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Load(path)
	if loaded.Len() != 2 {
		t.Fatalf("len = %d, want 2", loaded.Len())
	}
	got, ok := loaded.Get(key)
	if !ok {
		t.Fatal("expected a hit after reload")
	}
	if len(got) != 1 || got[0].ID != "SEC-001" || got[0].Line != 3 {
		t.Errorf("got %+v", got)
	}

	empty, ok := loaded.Get(Key("clean.php", []byte("<?php")))
	if !ok || len(empty) != 0 {
		t.Errorf("cached empty result: got %v, %v", empty, ok)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.cache"))
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if _, ok := s.Get("anything"); ok {
		t.Error("empty store should miss")
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := tempStorePath(t)
	if err := os.WriteFile(path, []byte("not msgpack at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := Load(path)
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0 for a corrupt store", s.Len())
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	path := tempStorePath(t)
	data, err := msgpack.Marshal(fileFormat{
		Version: Version + 1,
		Entries: map[string]entry{"stale": {}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0 after version bump", s.Len())
	}
}

func TestSaveSkipsWhenClean(t *testing.T) {
	path := tempStorePath(t)
	s := Load(path)
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("a clean store should not be written")
	}
}

func TestSaveDropsStaleEntries(t *testing.T) {
	path := tempStorePath(t)

	s := Load(path)
	oldKey := Key("config.php", []byte("v1"))
	keptKey := Key("clean.php", []byte("<?php"))
	s.Put(oldKey, []issue.Issue{{ID: "SEC-001"}})
	s.Put(keptKey, nil)
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Next run: config.php was edited, clean.php is unchanged.
	s = Load(path)
	if _, ok := s.Get(keptKey); !ok {
		t.Fatal("expected a hit for the unchanged file")
	}
	newKey := Key("config.php", []byte("v2"))
	s.Put(newKey, nil)
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := Load(path)
	if loaded.Len() != 2 {
		t.Fatalf("len = %d, want 2 after pruning", loaded.Len())
	}
	if _, ok := loaded.Get(oldKey); ok {
		t.Error("stale key for the old content should be dropped")
	}
	if _, ok := loaded.Get(newKey); !ok {
		t.Error("key for the new content should survive")
	}
	if _, ok := loaded.Get(keptKey); !ok {
		t.Error("key hit during the run should survive")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := Load(tempStorePath(t))
	s.Put("k", []issue.Issue{{ID: "SEC-001"}})

	got, _ := s.Get("k")
	got[0].ID = "mutated"

	again, _ := s.Get("k")
	if again[0].ID != "SEC-001" {
		t.Error("Get should return a copy, not the stored slice")
	}
}
