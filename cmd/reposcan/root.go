package reposcan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON       bool
	flagTable      bool
	flagNoColor    bool
	flagUnmasked   bool
	flagWorkers    int
	flagNoCache    bool
	flagNoAudit    bool
	flagSelfUpdate bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the reposcan CLI.
var rootCmd = &cobra.Command{
	Use:           "reposcan",
	Short:         "Scan git history for leaked secrets",
	Long:          "Reposcan walks every commit of a git repository and applies user-configured regex rules to the content each commit introduced.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if flagSelfUpdate {
			return selfUpdate()
		}
		return nil
	},
}

// Execute runs the reposcan CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output findings as a bordered table")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagUnmasked, "unmasked", false, "print matched values without masking")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable the last-scan result cache")
	rootCmd.PersistentFlags().BoolVar(&flagNoAudit, "no-audit", false, "do not append a record to the audit log")
	rootCmd.PersistentFlags().BoolVar(&flagSelfUpdate, "self-update", false, "update reposcan to the latest release")
}
