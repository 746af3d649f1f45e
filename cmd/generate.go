package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	generationx "github.com/tanpawarit/ai-toolkit/agent/generation"
)

var (
	generateJSON  bool
	generateSteps bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <request>",
	Short: "Generate a SQL statement for a natural-language request and gate it",
	Long: `generate lets the model explore the database schema, then classifies the
statement it produces. Read-only statements are executed and their rows
printed. Statements that could modify data, or that the model flagged with a
disclaimer, are quarantined and printed without being executed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print the verdict as JSON")
	generateCmd.Flags().BoolVar(&generateSteps, "steps", false, "print generation progress to stderr")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var observers []generationx.Observer
	var progress *generationx.ChannelObserver
	done := make(chan struct{})
	if generateSteps {
		progress = generationx.NewChannelObserver(64)
		observers = append(observers, progress)
		go func() {
			defer close(done)
			printProgress(cmd.ErrOrStderr(), progress.Events())
		}()
	} else {
		close(done)
	}

	a, err := newApp(ctx, observers...)
	if err != nil {
		if progress != nil {
			progress.Close()
		}
		<-done
		return err
	}
	defer a.close()

	verdict, err := a.service.GenerateQuery(ctx, strings.Join(args, " "))
	if progress != nil {
		progress.Close()
	}
	<-done
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if generateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(verdict)
	}
	_, err = fmt.Fprintln(out, verdict.Render())
	return err
}

func printProgress(w io.Writer, events <-chan generationx.Event) {
	for e := range events {
		switch e.Kind {
		case generationx.EventToolCallStarted:
			if e.Call != nil {
				fmt.Fprintf(w, "step %d: calling %s\n", e.Step, e.Call.Tool)
			}
		case generationx.EventToolCallFinished:
			if e.Result != nil && !e.Result.Success {
				fmt.Fprintf(w, "step %d: %s failed: %s\n", e.Step, e.Result.Tool, e.Result.Error)
			}
		case generationx.EventStepFinished:
			fmt.Fprintf(w, "step %d: done\n", e.Step)
		}
	}
}
