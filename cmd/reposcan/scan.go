package reposcan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/varalys/reposcan/internal/audit"
	"github.com/varalys/reposcan/internal/cache"
	"github.com/varalys/reposcan/internal/config"
	"github.com/varalys/reposcan/internal/gitscan"
	"github.com/varalys/reposcan/internal/report"
	"github.com/varalys/reposcan/internal/types"
)

var (
	flagPath        string
	flagBranchGlob  string
	flagRulesFile   string
	flagFromTime    string
	flagMaxBlobSize int64
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a repository's full history for secrets",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to the repository")
	cmd.Flags().StringVar(&flagBranchGlob, "branch-glob", "*", "glob matched against reference names; the literal HEAD scans HEAD only")
	cmd.Flags().StringVar(&flagRulesFile, "rules", "", "rules file (default: .reposcan.yml in the repository)")
	cmd.Flags().StringVar(&flagFromTime, "from", "", "only scan commits at or after this time (RFC 3339)")
	cmd.Flags().Int64Var(&flagMaxBlobSize, "max-blob-bytes", 0, "skip blobs larger than this (0 = built-in default)")
}

func scanOptions() (gitscan.Options, error) {
	opts := gitscan.Options{
		Workers:     flagWorkers,
		MaxBlobSize: flagMaxBlobSize,
	}
	if flagFromTime != "" {
		from, err := time.Parse(time.RFC3339, flagFromTime)
		if err != nil {
			return opts, fmt.Errorf("parse --from: %w", err)
		}
		opts.FromTime = from
	}
	return opts, nil
}

// loadRules resolves the rules file (explicit flag or repo-local discovery)
// and returns the parsed config plus the raw bytes used for cache keying.
func loadRules(repoRoot string) (config.FileConfig, []byte, error) {
	path := flagRulesFile
	if path == "" {
		for _, name := range []string{".reposcan.yml", ".reposcan.yaml", "reposcan.yml", "reposcan.yaml"} {
			p := filepath.Join(repoRoot, name)
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path == "" {
		return config.FileConfig{}, nil, fmt.Errorf("no rules file: pass --rules or add .reposcan.yml to the repository")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load rules %s: %w", path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, raw, nil
}

func headHash(repoRoot string) string {
	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}

func runScan(cmd *cobra.Command, _ []string) error {
	abs, _ := filepath.Abs(flagPath)
	cfg, rawRules, err := loadRules(abs)
	if err != nil {
		return err
	}

	branchGlob := flagBranchGlob
	if cfg.BranchGlob != nil && !cmd.Flags().Changed("branch-glob") {
		branchGlob = *cfg.BranchGlob
	}
	opts, err := scanOptions()
	if err != nil {
		return err
	}
	if opts.Workers == 0 && cfg.Workers != nil {
		opts.Workers = *cfg.Workers
	}
	if opts.MaxBlobSize == 0 && cfg.MaxBlobSize != nil {
		opts.MaxBlobSize = *cfg.MaxBlobSize
	}

	// A repeat scan of an unchanged HEAD with unchanged rules is served from
	// the cache; a from-time scan bypasses it since the key ignores time.
	var db cache.DB
	var cacheKey string
	if !flagNoCache && flagFromTime == "" {
		if head := headHash(abs); head != "" {
			cacheKey = cache.Key(head, branchGlob, rawRules)
			db, _ = cache.Load(abs)
			if res, ok := db.Get(cacheKey); ok {
				return emit(res.Findings, 0)
			}
		}
	}

	store, err := cfg.BuildStore()
	if err != nil {
		return err
	}
	store.Seal()

	started := time.Now()
	findings, err := gitscan.Scan(abs, branchGlob, store, opts)
	if err != nil {
		return err
	}
	duration := time.Since(started)

	if cacheKey != "" {
		db.Put(cacheKey, findings)
		_ = cache.Save(abs, db)
	}
	if !flagNoAudit {
		_ = audit.NewLog(abs).Append(audit.Record(abs, branchGlob, findings, duration))
	}
	return emit(findings, duration)
}

func emit(findings []types.Finding, duration time.Duration) error {
	switch {
	case flagJSON:
		return report.WriteJSON(os.Stdout, findings)
	case flagTable:
		report.PrintTable(os.Stdout, findings, printOptions(duration))
	default:
		report.PrintColumns(os.Stdout, findings, printOptions(duration))
	}
	return nil
}

func printOptions(duration time.Duration) report.PrintOptions {
	return report.PrintOptions{
		NoColor:  flagNoColor,
		Unmasked: flagUnmasked,
		Duration: duration,
	}
}
