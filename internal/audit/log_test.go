package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/varalys/reposcan/internal/types"
)

func TestAppendAndHistory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	l := NewLog(root)

	findings := []types.Finding{
		{CommitID: "0123456789abcdef0123456789abcdef01234567", FilePath: "a.txt", RuleName: "pw", Match: "hunter2abc"},
		{CommitID: "89abcdef0123456789abcdef0123456789abcdef", FilePath: "b.txt", RuleName: "aws", Match: "AKIA0000000000000000"},
	}
	if err := l.Append(Record(root, "*", findings, 2*time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(Record(root, "HEAD", nil, time.Second)); err != nil {
		t.Fatal(err)
	}

	recs, err := l.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 records, got %d", len(recs))
	}
	// newest first
	if recs[0].BranchGlob != "HEAD" || recs[1].TotalFindings != 2 {
		t.Fatalf("unexpected order: %+v", recs)
	}
	if recs[1].RuleCounts["pw"] != 1 || recs[1].RuleCounts["aws"] != 1 {
		t.Fatalf("unexpected rule counts: %+v", recs[1].RuleCounts)
	}

	raw, err := os.ReadFile(filepath.Join(root, ".git", "reposcan_audit.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "hunter2abc") {
		t.Fatal("secret values must not reach the audit log unmasked")
	}
}
