package reposcan

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/varalys/reposcan/internal/gitscan"
)

func init() {
	cmd := &cobra.Command{
		Use:   "content <oid>",
		Short: "Print the raw bytes of a blob by its object id",
		Long:  "Content fetches one blob from the repository object store by its 40-hex identifier and writes it to stdout verbatim, binary or not.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			b, err := gitscan.GetFileContent(flagPath, args[0])
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(b)
			return err
		},
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to the repository")
}
