package core

import (
	"time"

	"github.com/varalys/reposcan/internal/gitscan"
	"github.com/varalys/reposcan/internal/rules"
	"github.com/varalys/reposcan/internal/types"
)

// Re-export selected internal types as a stable public API surface. These
// are type aliases so external consumers can depend on a stable path.
type (
	Finding   = types.Finding
	RuleStore = rules.Store
	Options   = gitscan.Options
)

// Sentinel errors, re-exported for errors.Is checks by callers.
var (
	ErrInvalidPattern  = rules.ErrInvalidPattern
	ErrBadCaptureCount = rules.ErrBadCaptureCount
	ErrRepositoryOpen  = gitscan.ErrRepositoryOpen
	ErrInvalidOid      = gitscan.ErrInvalidOid
	ErrBlobNotFound    = gitscan.ErrBlobNotFound
)

// NewRuleStore returns an empty rule store.
func NewRuleStore() *RuleStore { return rules.NewStore() }

// CheckPattern compiles pattern under the content-rule contract and returns
// every captured substring found in content.
func CheckPattern(content []byte, pattern string) ([]string, error) {
	return rules.CheckPattern(content, pattern)
}

// Scanner bundles a rule store with the scan operations. Build the rules
// first, then scan; the store is sealed by the first scan.
type Scanner struct {
	Rules *RuleStore

	// FromTime, Workers and MaxBlobSize tune every scan this Scanner runs;
	// the zero values select a full-history scan sized to the machine.
	FromTime    time.Time
	Workers     int
	MaxBlobSize int64
}

// NewScanner returns a Scanner with an empty rule store.
func NewScanner() *Scanner {
	return &Scanner{Rules: rules.NewStore()}
}

// AddContentRule compiles and appends a content rule.
func (s *Scanner) AddContentRule(name, pattern string, whitelist, blacklist []string) error {
	return s.Rules.AddContentRule(name, pattern, whitelist, blacklist)
}

// AddFileNameRule compiles and appends a file-name rule.
func (s *Scanner) AddFileNameRule(name, pattern string) error {
	return s.Rules.AddFileNameRule(name, pattern)
}

// AddIgnoredFileExtension excludes an extension from scanning.
func (s *Scanner) AddIgnoredFileExtension(ext string) error {
	return s.Rules.AddIgnoredFileExtension(ext)
}

// AddIgnoredFilePath excludes paths containing the fragment from scanning.
func (s *Scanner) AddIgnoredFilePath(substr string) error {
	return s.Rules.AddIgnoredFilePath(substr)
}

func (s *Scanner) options() Options {
	return Options{
		FromTime:    s.FromTime,
		Workers:     s.Workers,
		MaxBlobSize: s.MaxBlobSize,
	}
}

// Scan walks the history of the repository at repositoryPath starting from
// the references selected by branchGlob and returns every finding.
func (s *Scanner) Scan(repositoryPath, branchGlob string) ([]Finding, error) {
	return gitscan.Scan(repositoryPath, branchGlob, s.Rules, s.options())
}

// ScanFromURL clones the repository at url into clonePath and scans it.
func (s *Scanner) ScanFromURL(url, clonePath, branchGlob string) ([]Finding, error) {
	return gitscan.ScanFromURL(url, clonePath, branchGlob, s.Rules, s.options())
}

// GetFileContent returns the raw bytes of one blob by its 40-hex identifier.
func (s *Scanner) GetFileContent(repositoryPath, fileOid string) ([]byte, error) {
	return gitscan.GetFileContent(repositoryPath, fileOid)
}
