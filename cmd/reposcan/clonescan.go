package reposcan

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/varalys/reposcan/internal/audit"
	"github.com/varalys/reposcan/internal/config"
	"github.com/varalys/reposcan/internal/gitscan"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clone-scan <url> <path>",
		Short: "Clone a remote repository and scan its history",
		Args:  cobra.ExactArgs(2),
		RunE:  runCloneScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagBranchGlob, "branch-glob", "*", "glob matched against reference names; the literal HEAD scans HEAD only")
	cmd.Flags().StringVar(&flagRulesFile, "rules", "", "rules file (required: the clone target does not exist yet)")
	cmd.Flags().StringVar(&flagFromTime, "from", "", "only scan commits at or after this time (RFC 3339)")
	cmd.Flags().Int64Var(&flagMaxBlobSize, "max-blob-bytes", 0, "skip blobs larger than this (0 = built-in default)")
}

func runCloneScan(_ *cobra.Command, args []string) error {
	url, clonePath := args[0], args[1]
	if flagRulesFile == "" {
		return fmt.Errorf("clone-scan requires --rules")
	}
	cfg, err := config.LoadFile(flagRulesFile)
	if err != nil {
		return fmt.Errorf("load rules %s: %w", flagRulesFile, err)
	}
	store, err := cfg.BuildStore()
	if err != nil {
		return err
	}
	store.Seal()

	opts, err := scanOptions()
	if err != nil {
		return err
	}
	branchGlob := flagBranchGlob
	if cfg.BranchGlob != nil && branchGlob == "*" {
		branchGlob = *cfg.BranchGlob
	}

	started := time.Now()
	findings, err := gitscan.ScanFromURL(url, clonePath, branchGlob, store, opts)
	if err != nil {
		return err
	}
	duration := time.Since(started)

	if !flagNoAudit {
		_ = audit.NewLog(clonePath).Append(audit.Record(clonePath, branchGlob, findings, duration))
	}
	return emit(findings, duration)
}
