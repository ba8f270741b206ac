// Package gitscan walks the commit history of an on-disk git repository and
// applies a sealed rule store to every file revision each commit introduced.
// It never writes to the repository.
package gitscan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	gitbinary "github.com/go-git/go-git/v5/utils/binary"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/varalys/reposcan/internal/log"
	"github.com/varalys/reposcan/internal/rules"
	"github.com/varalys/reposcan/internal/types"
)

// ErrRepositoryOpen reports a path that could not be opened as a git
// repository.
var ErrRepositoryOpen = errors.New("cannot open repository")

const (
	commitTimeLayout = "2006-01-02T15:04:05"

	// Blobs above this size are treated like binary blobs and skipped.
	defaultMaxBlobSize = 5_000_000

	// Blobs below this size cannot hold a secret worth reporting.
	minBlobSize = 2
)

// Options tunes a history scan. The zero value is a full-history scan with
// one worker per hardware thread.
type Options struct {
	// FromTime excludes commits whose committer time is before it. The zero
	// time means no lower bound.
	FromTime time.Time

	// Workers is the size of the worker pool; 0 means GOMAXPROCS.
	Workers int

	// MaxBlobSize overrides the oversized-blob cutoff; 0 means the default.
	MaxBlobSize int64
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) maxBlobSize() int64 {
	if o.MaxBlobSize > 0 {
		return o.MaxBlobSize
	}
	return defaultMaxBlobSize
}

// validateRepoPath validates and normalizes a repository path. Returns the
// cleaned absolute path or an error if invalid.
func validateRepoPath(path string) (string, error) {
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: path contains null byte", ErrRepositoryOpen)
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrRepositoryOpen, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrRepositoryOpen, path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: not a directory: %s", ErrRepositoryOpen, path)
	}
	return abs, nil
}

func openRepository(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrRepositoryOpen, path, err)
	}
	return repo, nil
}

// Scan walks every commit reachable from the references selected by
// branchGlob and returns one finding per (commit, file, match). The literal
// glob "HEAD" (or an empty glob) starts from HEAD only; any other glob is
// matched against reference names, and HEAD is always included. Merge
// commits contribute nothing. The order of the returned findings is
// unspecified.
//
// The store must be sealed before Scan is called; Scan seals it as a
// backstop. A commit that fails to load or diff is logged and skipped, so a
// partial result is returned rather than none.
func Scan(repoPath, branchGlob string, store *rules.Store, opts Options) ([]types.Finding, error) {
	absPath, err := validateRepoPath(repoPath)
	if err != nil {
		return nil, err
	}
	store.Seal()

	repo, err := openRepository(absPath)
	if err != nil {
		return nil, err
	}
	commits, err := commitHashes(repo, branchGlob, opts.FromTime)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return []types.Finding{}, nil
	}

	// Buffered so the feed below never blocks on a worker that failed to
	// open its handle.
	jobs := make(chan plumbing.Hash, len(commits))
	sink := &findingSink{}
	var wg sync.WaitGroup
	for i := 0; i < opts.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// One read-only handle per worker; go-git object readers are
			// not synchronized for concurrent packfile access.
			wrepo, err := openRepository(absPath)
			if err != nil {
				log.Errorf("worker: %v", err)
				return
			}
			for hash := range jobs {
				scanCommit(wrepo, hash, store, opts.maxBlobSize(), sink)
			}
		}()
	}
	for _, hash := range commits {
		jobs <- hash
	}
	close(jobs)
	wg.Wait()

	if sink.findings == nil {
		return []types.Finding{}, nil
	}
	return sink.findings, nil
}

// ScanFromURL clones the repository at url into clonePath and scans the
// clone. The clone is left on disk for later Scan or GetFileContent calls.
func ScanFromURL(url, clonePath, branchGlob string, store *rules.Store, opts Options) ([]types.Finding, error) {
	if _, err := git.PlainClone(clonePath, false, &git.CloneOptions{URL: url}); err != nil {
		return nil, fmt.Errorf("clone %s: %w", url, err)
	}
	return Scan(clonePath, branchGlob, store, opts)
}

// findingSink is the shared result list. The critical section is confined
// to appending fully constructed records.
type findingSink struct {
	mu       sync.Mutex
	findings []types.Finding
}

func (s *findingSink) append(f types.Finding) {
	s.mu.Lock()
	s.findings = append(s.findings, f)
	s.mu.Unlock()
}

// commitHashes materializes the commit list for the scan: every commit
// reachable from the selected heads, deduplicated, with the FromTime cutoff
// applied, ordered by committer time descending.
func commitHashes(repo *git.Repository, branchGlob string, from time.Time) ([]plumbing.Hash, error) {
	heads, err := startHeads(repo, branchGlob)
	if err != nil {
		return nil, err
	}

	type dated struct {
		hash plumbing.Hash
		when time.Time
	}
	var commits []dated
	seen := map[plumbing.Hash]bool{}
	stack := append([]plumbing.Hash(nil), heads...)
	for len(stack) > 0 {
		hash := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[hash] {
			continue
		}
		seen[hash] = true
		commit, err := repo.CommitObject(hash)
		if err != nil {
			log.Warnf("commit %s: %v", hash, err)
			continue
		}
		if from.IsZero() || !commit.Committer.When.Before(from) {
			commits = append(commits, dated{hash: hash, when: commit.Committer.When})
		}
		stack = append(stack, commit.ParentHashes...)
	}

	sort.Slice(commits, func(i, j int) bool {
		if commits[i].when.Equal(commits[j].when) {
			return commits[i].hash.String() < commits[j].hash.String()
		}
		return commits[i].when.After(commits[j].when)
	})
	out := make([]plumbing.Hash, len(commits))
	for i, c := range commits {
		out[i] = c.hash
	}
	return out, nil
}

// startHeads resolves the branch glob to a set of starting commit hashes.
// HEAD is always part of the set; the degenerate globs "HEAD" and "" select
// it alone.
func startHeads(repo *git.Repository, branchGlob string) ([]plumbing.Hash, error) {
	var heads []plumbing.Hash
	dedup := map[plumbing.Hash]bool{}
	add := func(h plumbing.Hash) {
		if !h.IsZero() && !dedup[h] {
			dedup[h] = true
			heads = append(heads, h)
		}
	}

	if head, err := repo.Head(); err == nil {
		add(head.Hash())
	}
	if branchGlob == "" || branchGlob == "HEAD" {
		return heads, nil
	}

	refs, err := repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		if matchRef(branchGlob, ref.Name()) {
			add(ref.Hash())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	return heads, nil
}

// matchRef matches the glob against both the full reference name
// ("refs/heads/main") and its short form ("main").
func matchRef(glob string, name plumbing.ReferenceName) bool {
	if ok, _ := doublestar.Match(glob, name.String()); ok {
		return true
	}
	ok, _ := doublestar.Match(glob, name.Short())
	return ok
}

// scanCommit extracts the commit's delta against its single parent (or the
// empty tree for a root commit) and scans every eligible new-side blob.
// Merge commits are skipped: their "new" side against either parent would
// re-attribute secrets that were already present. Any per-commit failure is
// logged and abandons that commit only.
func scanCommit(repo *git.Repository, hash plumbing.Hash, store *rules.Store, maxBlobSize int64, sink *findingSink) {
	commit, err := repo.CommitObject(hash)
	if err != nil {
		log.Warnf("commit %s: %v", hash, err)
		return
	}
	if commit.NumParents() > 1 {
		return
	}

	tree, err := commit.Tree()
	if err != nil {
		log.Warnf("commit %s: tree: %v", hash, err)
		return
	}
	var parentTree *object.Tree
	if commit.NumParents() == 1 {
		parent, err := commit.Parent(0)
		if err != nil {
			log.Warnf("commit %s: parent: %v", hash, err)
			return
		}
		if parentTree, err = parent.Tree(); err != nil {
			log.Warnf("commit %s: parent tree: %v", hash, err)
			return
		}
	}
	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		log.Warnf("commit %s: diff: %v", hash, err)
		return
	}

	commitID := commit.Hash.String()
	commitTime := commit.Committer.When.UTC().Format(commitTimeLayout)
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			continue
		}
		if action != merkletrie.Insert && action != merkletrie.Modify {
			continue
		}
		path := change.To.Name
		if !store.ShouldScanFilePath(strings.ToLower(path)) {
			continue
		}
		oid := change.To.TreeEntry.Hash
		blob, err := repo.BlobObject(oid)
		if err != nil {
			continue
		}
		if blob.Size < minBlobSize {
			continue
		}
		content, ok := readTextBlob(blob, maxBlobSize)
		if !ok {
			continue
		}

		matches := store.ScanFileName(path)
		matches = append(matches, store.ScanContent(content)...)
		for _, m := range matches {
			sink.append(types.Finding{
				CommitID:      commitID,
				CommitMessage: commit.Message,
				CommitTime:    commitTime,
				AuthorName:    commit.Author.Name,
				AuthorEmail:   commit.Author.Email,
				FilePath:      path,
				FileOID:       oid.String(),
				RuleName:      m.RuleName,
				Match:         m.Text,
			})
		}
	}
}

// readTextBlob returns the blob's full contents as an explicit-length
// buffer, or ok=false for blobs that are oversized or that the library's
// heuristic flags as binary.
func readTextBlob(blob *object.Blob, maxBlobSize int64) ([]byte, bool) {
	if blob.Size > maxBlobSize {
		return nil, false
	}
	rd, err := blob.Reader()
	if err != nil {
		return nil, false
	}
	defer rd.Close()
	content, err := io.ReadAll(rd)
	if err != nil {
		return nil, false
	}
	if isBin, err := gitbinary.IsBinary(bytes.NewReader(content)); err != nil || isBin {
		return nil, false
	}
	return content, true
}
