// Package commands implements the paybench command line.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/config"
	"github.com/okian/paybench/pkg/logger"
	"github.com/okian/paybench/pkg/metrics"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// rootOptions is the state shared by every subcommand once the persistent
// pre-run has loaded configuration.
type rootOptions struct {
	verbose bool
	now     func() time.Time

	cfg *config.Config
	svc *service.Service
}

// NewRootCommand builds the paybench command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{now: time.Now})
}

func newRootCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paybench",
		Short: "paybench serves and exports the annual pay benchmarking survey",
		Long: `paybench renders the published pay survey snapshot as a dashboard:
salary rates by role and geography, workforce KPIs, benefits, pay frameworks
and wage policy. Tables can be searched, filtered, sorted and exported as CSV;
charts can switch between bar, line and pie and be exported as images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			o.close()
		},
	}
	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newServeCommand(o),
		newSectionsCommand(o),
		newShowCommand(o),
		newRatesCommand(o),
		newExportCommand(o),
		newSmokeCommand(o),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFile(cfg.LogFile)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	logger.Get().Debug(ctx, "paybench starting",
		logger.String("version", Version),
		logger.String("commit", Commit),
		logger.String("buildDate", BuildDate),
	)
	metrics.Configure(cfg.MetricsEnabled, cfg.MetricsInterval)
	o.cfg = cfg
	return nil
}

// service starts the dashboard service on first use.
func (o *rootOptions) service(ctx context.Context) (*service.Service, error) {
	if o.svc != nil {
		return o.svc, nil
	}
	svc := service.New(
		service.WithLogger(logger.Get()),
		service.WithPalette(o.cfg.Palette),
		service.WithChartSize(o.cfg.ChartWidth, o.cfg.ChartHeight),
		service.WithClock(o.now),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	o.svc = svc
	return svc, nil
}

func (o *rootOptions) close() {
	if o.svc != nil {
		o.svc.Stop()
		o.svc = nil
	}
	_ = logger.Sync()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "paybench %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			return err
		},
	}
}
