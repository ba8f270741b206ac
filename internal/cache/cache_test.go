package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/varalys/reposcan/internal/types"
)

func TestKeyChangesWithInputs(t *testing.T) {
	base := Key("abc", "*", []byte("rules"))
	if Key("abc", "*", []byte("rules")) != base {
		t.Fatal("key must be deterministic")
	}
	if Key("def", "*", []byte("rules")) == base {
		t.Fatal("key must change with HEAD")
	}
	if Key("abc", "HEAD", []byte("rules")) == base {
		t.Fatal("key must change with branch glob")
	}
	if Key("abc", "*", []byte("other")) == base {
		t.Fatal("key must change with rules content")
	}
	if len(base) != 16 {
		t.Fatalf("key should be 16 hex chars, got %q", base)
	}
}

func TestRoundTrip(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	db, _ := Load(root)
	key := Key("abc", "*", []byte("rules"))
	db.Put(key, []types.Finding{{RuleName: "pw", Match: "hunter2abc"}})
	if err := Save(root, db); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, ".git", "reposcan_cache.json")); err != nil {
		t.Fatalf("cache should live under .git: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	res, ok := loaded.Get(key)
	if !ok || res.Count != 1 || res.Findings[0].Match != "hunter2abc" {
		t.Fatalf("unexpected cached results: %+v ok=%v", res, ok)
	}
	if _, ok := loaded.Get(Key("other", "*", nil)); ok {
		t.Fatal("unknown key should miss")
	}
}
