package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func fixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`password = "hunter2abc"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Add("config.yaml"); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)}
	if _, err := w.Commit("initial", &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestScannerEndToEnd(t *testing.T) {
	dir := fixtureRepo(t)

	s := NewScanner()
	if err := s.AddContentRule("pw", `password = "([A-Za-z0-9]{10})"`, nil, nil); err != nil {
		t.Fatal(err)
	}
	findings, err := s.Scan(dir, "*")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(findings) != 1 || findings[0].Match != "hunter2abc" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	content, err := s.GetFileContent(dir, findings[0].FileOID)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != `password = "hunter2abc"`+"\n" {
		t.Fatalf("unexpected blob content: %q", content)
	}
}

func TestScannerErrorSurface(t *testing.T) {
	s := NewScanner()
	if err := s.AddContentRule("bad", `no-capture`, nil, nil); !errors.Is(err, ErrBadCaptureCount) {
		t.Fatalf("want ErrBadCaptureCount, got %v", err)
	}
	if _, err := s.Scan(t.TempDir(), "*"); !errors.Is(err, ErrRepositoryOpen) {
		t.Fatalf("want ErrRepositoryOpen, got %v", err)
	}
	if _, err := s.GetFileContent(fixtureRepo(t), "zzz"); !errors.Is(err, ErrInvalidOid) {
		t.Fatalf("want ErrInvalidOid, got %v", err)
	}
}

func TestCheckPatternFacade(t *testing.T) {
	got, err := CheckPattern([]byte("x=1 x=2"), `x=(\d)`)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("unexpected captures: %v", got)
	}
}
