package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	memoryx "github.com/tanpawarit/ai-toolkit/agent/memory"
)

var memNotes string

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Read and write persistent memory entries",
}

var memoryGetCmd = &cobra.Command{
	Use:   "get <category> <key>",
	Short: "Print a memory entry as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  memoryGet,
}

var memorySetCmd = &cobra.Command{
	Use:   "set <category> <key> <value>",
	Short: "Create or replace a memory entry",
	Args:  cobra.MinimumNArgs(3),
	RunE:  memorySet,
}

func init() {
	memorySetCmd.Flags().StringVar(&memNotes, "notes", "", "optional notes stored with the entry")

	memoryCmd.AddCommand(memoryGetCmd, memorySetCmd)
	rootCmd.AddCommand(memoryCmd)
}

func memoryGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, closeFn, err := openMemory(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	entry, err := store.Get(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(entry)
}

func memorySet(cmd *cobra.Command, args []string) error {
	// the session category belongs to the gatekeeper
	if err := memoryx.ValidateCategory(args[0]); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, closeFn, err := openMemory(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	var notes *string
	if cmd.Flags().Changed("notes") {
		notes = &memNotes
	}
	if err := store.Set(ctx, args[0], args[1], strings.Join(args[2:], " "), notes); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "stored %s/%s\n", strings.TrimSpace(args[0]), strings.TrimSpace(args[1]))
	return err
}
