package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/paybench/internal/smoke"
)

func newSmokeCommand(o *rootOptions) *cobra.Command {
	cfg := smoke.NewConfig()
	format := formatTable
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check every page, table download and chart image of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, formatTable, formatJSON); err != nil {
				return err
			}
			if !cmd.Flags().Changed("url") {
				cfg.BaseURL = displayURLFromAddr(o.cfg.Addr)
			}
			report, runErr := smoke.Run(cmd.Context(), cfg)
			if report == nil {
				return runErr
			}
			if format == formatJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				return runErr
			}
			rows := make([][]string, len(report.Checks))
			for i, c := range report.Checks {
				status := "ok"
				if !c.OK() {
					status = c.Err
				}
				rows[i] = []string{c.Name, c.Duration.Round(time.Microsecond).String(), status}
			}
			var b strings.Builder
			if len(rows) > 0 {
				b.WriteString(renderGrid([]string{"Check", "Time", "Result"}, rows, []bool{false, true, false}))
				b.WriteString("\n")
			}
			b.WriteString(report.Summary())
			b.WriteString("\n")
			if _, err := fmt.Fprint(cmd.OutOrStdout(), b.String()); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the server (default derived from config addr)")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent requests")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table or json")
	return cmd
}
