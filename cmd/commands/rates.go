package commands

import (
	"github.com/spf13/cobra"

	service "github.com/okian/paybench/internal/app"
)

func newRatesCommand(o *rootOptions) *cobra.Command {
	var (
		qf     queryFlags
		format = formatTable
	)
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Search, filter and sort the salary rates table",
		Example: `  paybench rates --geography "Outside London" --search entry
  paybench rates --sort median --dir desc --format csv > rates.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, formatTable, formatJSON, formatCSV); err != nil {
				return err
			}
			q, err := qf.query()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := o.service(ctx)
			if err != nil {
				return err
			}
			if format == formatCSV {
				_, err := svc.RatesCSV(ctx, q, cmd.OutOrStdout())
				return err
			}
			page, err := svc.Page(ctx, service.SectionRates, q)
			if err != nil {
				return err
			}
			t := page.Tables[0]
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), t)
			}
			return renderTable(cmd.OutOrStdout(), t)
		},
	}
	qf.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, json or csv")
	return cmd
}
