// Package rules holds the compiled detection rules applied to file contents
// and file names during a repository scan, plus the extension and path
// exclusions that decide which files are looked at in the first place.
//
// Patterns use Go's regexp package, i.e. the RE2 dialect: no backreferences,
// no lookaround, linear-time matching. That dialect is part of the contract
// with rule authors.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
)

var (
	// ErrInvalidPattern reports a user-supplied regex that failed to compile.
	ErrInvalidPattern = errors.New("invalid regex pattern")

	// ErrBadCaptureCount reports a content pattern without exactly one
	// capturing group, or a whitelist/blacklist pattern with any.
	ErrBadCaptureCount = errors.New("bad capture group count")

	// ErrEmptyArgument reports an empty rule name, pattern, extension or
	// path fragment.
	ErrEmptyArgument = errors.New("argument can not be empty")

	// ErrSealed reports a mutation attempted after scanning started.
	ErrSealed = errors.New("rule store is sealed")
)

// ContentRule matches secrets inside file contents. The pattern carries
// exactly one capturing group; the captured substring is the reported match.
type ContentRule struct {
	Name      string
	pattern   *regexp.Regexp
	whitelist []*regexp.Regexp
	blacklist []*regexp.Regexp
}

// FileNameRule matches on the file path itself; a partial match reports the
// whole path.
type FileNameRule struct {
	Name    string
	pattern *regexp.Regexp
}

// Match is one (rule, matched text) pair produced by a scanner.
type Match struct {
	RuleName string
	Text     string
}

// Store is an ordered set of content and file-name rules together with the
// ignored-extension and ignored-path sets. A Store is built up front, sealed
// when a scan begins, and from then on only read. A sealed Store is safe for
// concurrent use.
type Store struct {
	contentRules  []ContentRule
	fileNameRules []FileNameRule
	skipExts      map[string]struct{}
	skipPaths     map[string]struct{}
	sealed        atomic.Bool
}

// NewStore returns an empty rule store. Empty exclusion sets are valid and
// mean "exclude nothing".
func NewStore() *Store {
	return &Store{
		skipExts:  map[string]struct{}{},
		skipPaths: map[string]struct{}{},
	}
}

// Seal freezes the store. Further Add calls fail with ErrSealed. Sealing is
// idempotent.
func (s *Store) Seal() { s.sealed.Store(true) }

func (s *Store) mutable() error {
	if s.sealed.Load() {
		return ErrSealed
	}
	return nil
}

// compileContentPattern enforces the content-rule contract: the pattern must
// compile and carry exactly one capturing group.
func compileContentPattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("%w: pattern must have exactly one capturing group: %s", ErrBadCaptureCount, pattern)
	}
	return re, nil
}

func compileRefinement(kind, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, kind, err)
	}
	if re.NumSubexp() != 0 {
		return nil, fmt.Errorf("%w: %s pattern must not have a capturing group: %s", ErrBadCaptureCount, kind, pattern)
	}
	return re, nil
}

// AddContentRule compiles and appends a content rule. Rules are evaluated in
// insertion order. Whitelist and blacklist patterns refine the captured
// substring and must not contain capturing groups of their own.
func (s *Store) AddContentRule(name, pattern string, whitelist, blacklist []string) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if name == "" || pattern == "" {
		return fmt.Errorf("%w: rule name and pattern", ErrEmptyArgument)
	}
	re, err := compileContentPattern(pattern)
	if err != nil {
		return err
	}
	rule := ContentRule{Name: name, pattern: re}
	for _, p := range whitelist {
		wre, err := compileRefinement("whitelist", p)
		if err != nil {
			return err
		}
		rule.whitelist = append(rule.whitelist, wre)
	}
	for _, p := range blacklist {
		bre, err := compileRefinement("blacklist", p)
		if err != nil {
			return err
		}
		rule.blacklist = append(rule.blacklist, bre)
	}
	s.contentRules = append(s.contentRules, rule)
	return nil
}

// AddFileNameRule compiles and appends a file-name rule. No capture-count
// constraint applies.
func (s *Store) AddFileNameRule(name, pattern string) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if name == "" || pattern == "" {
		return fmt.Errorf("%w: rule name and pattern", ErrEmptyArgument)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	s.fileNameRules = append(s.fileNameRules, FileNameRule{Name: name, pattern: re})
	return nil
}

// AddIgnoredFileExtension excludes files carrying the extension from
// scanning. A leading dot is tolerated and stripped; the stored value is
// lower-cased to match the lower-cased paths the scan engine filters with.
// Adding the same extension twice is a no-op.
func (s *Store) AddIgnoredFileExtension(ext string) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if ext == "" {
		return fmt.Errorf("%w: file extension", ErrEmptyArgument)
	}
	s.skipExts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	return nil
}

// AddIgnoredFilePath excludes every file whose path contains the given
// fragment. The stored value is lower-cased. Adding the same fragment twice
// is a no-op.
func (s *Store) AddIgnoredFilePath(substr string) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if substr == "" {
		return fmt.Errorf("%w: file path", ErrEmptyArgument)
	}
	s.skipPaths[strings.ToLower(substr)] = struct{}{}
	return nil
}

// ShouldScanFilePath reports whether the path survives the extension and
// path exclusions. Membership checks are case-sensitive against the stored
// (lower-cased) sets; callers that want the engine's behavior pass a
// lower-cased path.
func (s *Store) ShouldScanFilePath(path string) bool {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		if _, skip := s.skipExts[path[i+1:]]; skip {
			return false
		}
	}
	for frag := range s.skipPaths {
		if strings.Contains(path, frag) {
			return false
		}
	}
	return true
}

// ContentRuleCount returns the number of content rules in the store.
func (s *Store) ContentRuleCount() int { return len(s.contentRules) }

// FileNameRuleCount returns the number of file-name rules in the store.
func (s *Store) FileNameRuleCount() int { return len(s.fileNameRules) }
