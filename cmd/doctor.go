package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	memoryx "github.com/tanpawarit/ai-toolkit/agent/memory"
	openrouterx "github.com/tanpawarit/ai-toolkit/pkg/openrouter"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, model availability and database connectivity",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type check struct {
	name string
	run  func(ctx context.Context) (string, error)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := loadSettings()
	if err != nil {
		return err
	}

	checks := []check{
		{name: "config", run: func(context.Context) (string, error) {
			if err := s.llm.Validate(); err != nil {
				return "", err
			}
			return fmt.Sprintf("max steps %d", s.llm.StepBudget()), nil
		}},
		{name: "model", run: func(ctx context.Context) (string, error) {
			return checkModels(ctx, s)
		}},
		{name: "database", run: func(ctx context.Context) (string, error) {
			db, err := openDatabase(ctx)
			if err != nil {
				return "", err
			}
			defer db.Close()
			return "reachable", nil
		}},
		{name: "memory", run: func(ctx context.Context) (string, error) {
			store, closeFn, err := openMemory(ctx)
			if err != nil {
				return "", err
			}
			defer closeFn()
			if _, err := memoryx.GetSession(ctx, store, contractx.KeyLastQuery); err != nil {
				return "", err
			}
			return s.memory.Backend, nil
		}},
	}

	return runChecks(ctx, cmd.OutOrStdout(), checks)
}

func checkModels(ctx context.Context, s *settings) (string, error) {
	seen := map[string]bool{}
	var ids []string
	for _, purpose := range []contractx.Purpose{contractx.PurposeGenerate, contractx.PurposeExplain} {
		cfg := s.llm.OpenRouterFor(purpose)
		if seen[cfg.Model] {
			continue
		}
		seen[cfg.Model] = true
		id, err := openrouterx.CheckModel(ctx, cfg)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", contractx.ErrService, cfg.Model, err)
		}
		ids = append(ids, id)
	}
	return fmt.Sprint(ids), nil
}

func runChecks(ctx context.Context, out io.Writer, checks []check) error {
	failed := 0
	for _, c := range checks {
		detail, err := c.run(ctx)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %-9s %v\n", c.name, err)
			continue
		}
		fmt.Fprintf(out, "ok    %-9s %s\n", c.name, detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
