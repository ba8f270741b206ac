// Package audit appends a record of every scan run to a JSONL log kept next
// to the repository's git metadata. Matched secret values are masked before
// they reach disk.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/varalys/reposcan/internal/report"
	"github.com/varalys/reposcan/internal/types"
)

// ScanRecord is one audit log entry.
type ScanRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	ScanID        string         `json:"scan_id"`
	RepoPath      string         `json:"repo_path"`
	BranchGlob    string         `json:"branch_glob"`
	TotalFindings int            `json:"total_findings"`
	RuleCounts    map[string]int `json:"rule_counts"`
	Duration      string         `json:"duration"`
	TopFindings   []Summary      `json:"top_findings,omitempty"`
}

// Summary is a masked, truncated view of one finding.
type Summary struct {
	FilePath string `json:"file_path"`
	CommitID string `json:"commit_id"`
	RuleName string `json:"rule_name"`
	Match    string `json:"match"`
}

// Log appends scan records under the repository's .git directory.
type Log struct {
	logPath string
}

// NewLog returns the audit log for the repository at root.
func NewLog(root string) *Log {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, ".reposcan_audit.jsonl")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "reposcan_audit.jsonl")
	}
	return &Log{logPath: logPath}
}

// Record builds a ScanRecord from a finished scan.
func Record(repoPath, branchGlob string, findings []types.Finding, duration time.Duration) ScanRecord {
	ruleCounts := make(map[string]int)
	for _, f := range findings {
		ruleCounts[f.RuleName]++
	}
	top := make([]Summary, 0, 10)
	for i, f := range findings {
		if i >= 10 {
			break
		}
		top = append(top, Summary{
			FilePath: f.FilePath,
			CommitID: f.CommitID,
			RuleName: f.RuleName,
			Match:    report.Mask(f.Match),
		})
	}
	return ScanRecord{
		Timestamp:     time.Now(),
		RepoPath:      repoPath,
		BranchGlob:    branchGlob,
		TotalFindings: len(findings),
		RuleCounts:    ruleCounts,
		Duration:      duration.String(),
		TopFindings:   top,
	}
}

// Append writes one record to the log.
func (l *Log) Append(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", time.Now().UnixNano())
	}
	// Owner-only: the log names files that held secrets
	f, err := os.OpenFile(l.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// History returns past records, newest first.
func (l *Log) History() ([]ScanRecord, error) {
	f, err := os.Open(l.logPath)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec ScanRecord
		if err := dec.Decode(&rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
