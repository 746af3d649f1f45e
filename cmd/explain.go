package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain [statement-or-error]",
	Short: "Explain a SQL statement or database error in plain language",
	Long: `explain describes the given statement or error. Without an argument it
explains the last execution error, or failing that the last generated
statement, from session memory.`,
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	text, err := a.service.Explain(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
