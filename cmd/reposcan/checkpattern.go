package reposcan

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/varalys/reposcan/internal/rules"
)

var flagCheckFile string

func init() {
	cmd := &cobra.Command{
		Use:   "check-pattern <pattern>",
		Short: "Try a content pattern against a file or stdin",
		Long:  "Check-pattern compiles the pattern under the content-rule contract (exactly one capturing group) and prints every captured substring, one per line.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var content []byte
			var err error
			if flagCheckFile != "" {
				content, err = os.ReadFile(flagCheckFile)
			} else {
				content, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}
			captures, err := rules.CheckPattern(content, args[0])
			if err != nil {
				return err
			}
			for _, c := range captures {
				fmt.Println(c)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVarP(&flagCheckFile, "file", "f", "", "read content from this file instead of stdin")
}
