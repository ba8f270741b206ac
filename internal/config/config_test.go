package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/varalys/reposcan/internal/rules"
)

const sampleYAML = `
content_rules:
  - name: password
    pattern: 'password = "([A-Za-z0-9]{10})"'
  - name: token
    pattern: 'token = "([A-Z_0-9]+)"'
    blacklist:
      - EXAMPLE
file_name_rules:
  - name: keyfile
    pattern: '\.(?:pem|cer)$'
ignore_extensions:
  - js
ignore_paths:
  - node_modules
branch_glob: "refs/heads/*"
workers: 4
`

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadFileAndBuildStore(t *testing.T) {
	p := writeConfig(t, t.TempDir(), "rules.yml", sampleYAML)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BranchGlob == nil || *cfg.BranchGlob != "refs/heads/*" {
		t.Fatalf("branch_glob not parsed: %+v", cfg.BranchGlob)
	}
	if cfg.Workers == nil || *cfg.Workers != 4 {
		t.Fatalf("workers not parsed: %+v", cfg.Workers)
	}

	s, err := cfg.BuildStore()
	if err != nil {
		t.Fatal(err)
	}
	if s.ContentRuleCount() != 2 || s.FileNameRuleCount() != 1 {
		t.Fatalf("unexpected rule counts: %d/%d", s.ContentRuleCount(), s.FileNameRuleCount())
	}
	if s.ShouldScanFilePath("app.js") {
		t.Fatal("ignored extension should be active")
	}
	if s.ShouldScanFilePath("a/node_modules/b.txt") {
		t.Fatal("ignored path should be active")
	}
	if ms := s.ScanContent([]byte(`token = "EXAMPLE_TOKEN"`)); len(ms) != 0 {
		t.Fatalf("blacklist from config should apply, got %+v", ms)
	}
}

func TestBuildStoreReportsBadRulePosition(t *testing.T) {
	cfg := FileConfig{ContentRules: []ContentRuleConfig{
		{Name: "ok", Pattern: `x=(\w+)`},
		{Name: "broken", Pattern: `x=\w+`},
	}}
	_, err := cfg.BuildStore()
	if err == nil {
		t.Fatal("expected error for capture-less pattern")
	}
	if !errors.Is(err, rules.ErrBadCaptureCount) {
		t.Fatalf("want ErrBadCaptureCount, got %v", err)
	}
}

func TestLoadLocalDiscovery(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error with no config present")
	}
	writeConfig(t, dir, ".reposcan.yml", sampleYAML)
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.ContentRules) != 2 {
		t.Fatalf("unexpected rules: %+v", cfg.ContentRules)
	}
}
