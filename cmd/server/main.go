package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ikrrevents/eventsite/internal/app"
	"github.com/ikrrevents/eventsite/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCommand builds the CLI.  Running the binary without a subcommand
// serves HTTP.
func newRootCommand() *cobra.Command {
	var envFile string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), app.Serve)
		},
	}
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), app.Migrate)
		},
	}
	worker := &cobra.Command{
		Use:   "worker",
		Short: "Consume submission events into the submissions log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), app.Work)
		},
	}

	root := &cobra.Command{
		Use:           "eventsite",
		Short:         "IKRR Events booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal in production.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
		RunE: serve.RunE,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.AddCommand(serve, migrate, worker)
	return root
}

// run loads the configuration, installs the logger and runs fn until
// SIGINT or SIGTERM.
func run(parent context.Context, fn func(context.Context, config.Config, *slog.Logger) error) error {
	cfg := config.Load()
	log := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, cfg, log)
}
