package gitscan

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
)

var (
	// ErrInvalidOid reports a blob identifier that is not 40 hex characters.
	ErrInvalidOid = errors.New("invalid object id")

	// ErrBlobNotFound reports an identifier that does not resolve to a blob
	// in the object store.
	ErrBlobNotFound = errors.New("blob not found")
)

// GetFileContent returns the raw bytes of the blob identified by oid, a
// 40-hex blob identifier, from the repository at repoPath. It is a
// standalone operation: no rules are consulted and binary blobs are returned
// verbatim.
func GetFileContent(repoPath, oid string) ([]byte, error) {
	absPath, err := validateRepoPath(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := openRepository(absPath)
	if err != nil {
		return nil, err
	}
	hash, err := parseOid(oid)
	if err != nil {
		return nil, err
	}
	blob, err := repo.BlobObject(hash)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, oid)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrBlobNotFound, oid, err)
	}
	rd, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", oid, err)
	}
	defer rd.Close()
	return io.ReadAll(rd)
}

func parseOid(oid string) (plumbing.Hash, error) {
	if len(oid) != 40 {
		return plumbing.ZeroHash, fmt.Errorf("%w: %q", ErrInvalidOid, oid)
	}
	for _, c := range oid {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return plumbing.ZeroHash, fmt.Errorf("%w: %q", ErrInvalidOid, oid)
		}
	}
	return plumbing.NewHash(oid), nil
}
