// Package cmd is the ai-toolkit command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/ai-toolkit/pkg/config"
	logx "github.com/tanpawarit/ai-toolkit/pkg/logger"
	_ "github.com/tanpawarit/ai-toolkit/pkg/logger/autoload"
	telemetryx "github.com/tanpawarit/ai-toolkit/pkg/telemetry"
)

var (
	// Version is injected via ldflags at build time.
	Version = "dev"

	envFile   string
	verbose   bool
	traceFlag bool

	telemetryShutdown telemetryx.ShutdownFunc
)

func resolvedVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

var rootCmd = &cobra.Command{
	Use:           "ai-toolkit",
	Short:         "Natural-language SQL assistant for PostgreSQL",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `ai-toolkit turns a natural-language request into a SQL statement by
letting a language model explore the live schema, then gates the statement:
read-only statements run, anything that could modify data is quarantined.`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configx.SetEnvFile(envFile)

		logCfg, err := configx.New[logx.Config]("LOG")
		if err != nil {
			return fmt.Errorf("loading log config: %w", err)
		}
		if verbose {
			logCfg.Debug = true
			logCfg.Level = ""
		}
		logx.Init(*logCfg)

		telCfg, err := configx.New[telemetryx.Config]("TELEMETRY")
		if err != nil {
			return fmt.Errorf("loading telemetry config: %w", err)
		}
		if traceFlag {
			telCfg.Enabled = true
		}
		shutdown, err := telemetryx.Setup(*telCfg, resolvedVersion())
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		telemetryShutdown = shutdown
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default: ./.env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging, including generation steps")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "export OpenTelemetry spans to stdout")
	rootCmd.Version = resolvedVersion()
}

// Execute runs the root command and flushes telemetry on exit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if telemetryShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := telemetryShutdown(ctx); shutdownErr != nil {
			log.Warn().Err(shutdownErr).Msg("telemetry shutdown failed")
		}
	}
	return err
}
