package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"teamstats/internal/api"
	"teamstats/internal/config"
	"teamstats/internal/constants"
	fxmodules "teamstats/internal/fx"
	"teamstats/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts config.Options

	rootCmd := &cobra.Command{
		Use:   "teamstats",
		Short: "Weekly team activity report",
		Long: `teamstats appends this week's check-in and Twitter activity to every member
of a team roster and prints the updated roster as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.CheckinPath, "checkin", "c", "", "Checkin records for the week")
	flags.StringVarP(&opts.RosterPath, "input", "i", "", "Input roster file")
	flags.StringVarP(&opts.OutputPath, "output", "o", "", "Output file (default stdout)")
	flags.StringVar(&opts.TokensPath, "tokens", "", "YAML file with checkin tokens")
	flags.StringVar(&opts.ArchivePath, "archive", "", "SQLite archive for run history")
	_ = rootCmd.MarkFlagRequired("checkin")
	_ = rootCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(newHistoryCmd())
	return rootCmd
}

// newApp builds the container for one command invocation.
func newApp(cmd *cobra.Command, opts config.Options, targets ...any) *fx.App {
	return fx.New(
		fxmodules.Module,
		fx.Supply(opts),
		fx.Supply(api.Prompt{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}),
		fx.Provide(func() io.Writer { return cmd.OutOrStdout() }),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
		fx.Populate(targets...),
	)
}

func withApp(cmd *cobra.Command, app *fx.App, run func(ctx context.Context) error) error {
	if err := app.Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	startCtx, cancel := context.WithTimeout(ctx, constants.ShutdownTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return run(ctx)
}

func runReport(cmd *cobra.Command, opts config.Options) error {
	var (
		svc    *service.ReportService
		logger zerolog.Logger
	)
	app := newApp(cmd, opts, &svc, &logger)

	return withApp(cmd, app, func(ctx context.Context) error {
		_, err := svc.Run(ctx, service.ReportRequest{
			CheckinPath: opts.CheckinPath,
			RosterPath:  opts.RosterPath,
			OutputPath:  opts.OutputPath,
		})
		if err != nil {
			logger.Error().Err(err).Msg("report failed")
			return err
		}
		logger.Info().Msg("report complete")
		return nil
	})
}
