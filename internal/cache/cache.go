// Package cache stores the results of the most recent scans so the CLI can
// serve a repeat scan of an unchanged repository without walking history
// again. The library-level scan never consults it.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/varalys/reposcan/internal/types"
)

// Results is one cached scan outcome.
type Results struct {
	Findings  []types.Finding `json:"findings"`
	Timestamp time.Time       `json:"timestamp"`
	Count     int             `json:"count"`
}

// DB maps scan keys to cached results.
type DB struct {
	Entries map[string]Results `json:"entries"`
}

func defaultPath(root string) string {
	// Prefer storing the cache under .git to avoid accidental commits
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "reposcan_cache.json")
	}
	return filepath.Join(root, ".reposcan_cache.json")
}

// Key derives the cache key for a scan: the repository HEAD, the branch
// glob, and the raw rules-file bytes. Any change to one of them changes the
// key.
func Key(headHash, branchGlob string, rulesFile []byte) string {
	d := xxhash.New()
	d.WriteString(headHash)
	d.WriteString("\x00")
	d.WriteString(branchGlob)
	d.WriteString("\x00")
	d.Write(rulesFile)
	sum := d.Sum64()
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// Load reads the cache for the given repository root. A missing or corrupt
// cache file yields an empty DB and the underlying error.
func Load(root string) (DB, error) {
	var db DB
	b, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]Results{}}, err
	}
	if err := json.Unmarshal(b, &db); err != nil {
		return DB{Entries: map[string]Results{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Results{}
	}
	return db, nil
}

// Save writes the cache for the given repository root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(defaultPath(root), b, 0o644)
}

// Put records one scan outcome under key and prunes nothing; the cache stays
// small because keys only change when HEAD or the rules move.
func (db *DB) Put(key string, findings []types.Finding) {
	if db.Entries == nil {
		db.Entries = map[string]Results{}
	}
	db.Entries[key] = Results{
		Findings:  findings,
		Timestamp: time.Now(),
		Count:     len(findings),
	}
}

// Get returns the cached results for key, if present.
func (db *DB) Get(key string) (Results, bool) {
	r, ok := db.Entries[key]
	return r, ok
}
