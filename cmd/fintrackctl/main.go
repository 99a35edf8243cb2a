package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// ledger is what every subcommand works on.
type ledger struct {
	tracker *services.Tracker
	close   func() error
}

// openFunc opens the ledger for one command invocation.
type openFunc func(ctx context.Context, logLevel string) (*ledger, error)

// openConfigured opens the store named by the environment, exactly like the
// server does, so both see the same ledger.
func openConfigured(ctx context.Context, logLevel string) (*ledger, error) {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(logLevel, log.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(logger)

	res, err := cli.OpenBackend(ctx, logger, cfg, false)
	if err != nil {
		return nil, fmt.Errorf("open backend: %w", err)
	}
	tracker, err := cli.NewTracker(ctx, logger, cfg, res)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	return &ledger{tracker: tracker, close: res.Cleanup}, nil
}

func newRootCmd(open openFunc) *cobra.Command {
	var (
		logLevel string
		current  *ledger
	)

	root := &cobra.Command{
		Use:   "fintrackctl",
		Short: "Manage the fintrack ledger from the terminal",
		Long: `fintrackctl records, lists and deletes income and expense transactions,
manages categories and exports the ledger as CSV. It uses the same store as
the fintrack web server (DATA_BACKEND, SQLITE_DB_PATH).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := open(cmd.Context(), logLevel)
			if err != nil {
				return err
			}
			current = l
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if current == nil || current.close == nil {
				return nil
			}
			return current.close()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	get := func() *services.Tracker { return current.tracker }
	root.AddCommand(addCmd(get))
	root.AddCommand(listCmd(get))
	root.AddCommand(deleteCmd(get))
	root.AddCommand(categoriesCmd(get))
	root.AddCommand(summaryCmd(get))
	root.AddCommand(exportCmd(get))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(openConfigured).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
