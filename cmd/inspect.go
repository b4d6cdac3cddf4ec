package cmd

import (
	"fmt"
	"sort"

	"thread-digest/internal/postfile"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <post.md>",
	Short: "Parse a generated post file and print its frontmatter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := postfile.ParseFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		keys := make([]string, 0, len(doc.Raw))
		for k := range doc.Raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s: %v\n", k, doc.Raw[k])
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no frontmatter found")
		}
		fmt.Fprintf(out, "body bytes: %d\n", len(doc.Body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
