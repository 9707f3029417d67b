package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSectionsCommand(o *rootOptions) *cobra.Command {
	format := formatTable
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "List the dashboard sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, formatTable, formatJSON); err != nil {
				return err
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			sections := svc.Sections()
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), sections)
			}
			rows := make([][]string, len(sections))
			for i, s := range sections {
				rows[i] = []string{s.ID, s.Title, s.Summary}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderGrid([]string{"ID", "Title", "Summary"}, rows, nil))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table or json")
	return cmd
}

func newShowCommand(o *rootOptions) *cobra.Command {
	var (
		qf     queryFlags
		format = formatTable
	)
	cmd := &cobra.Command{
		Use:   "show SECTION",
		Short: "Render one section in the terminal",
		Example: `  paybench show overview --region london
  paybench show benefits --category Leave --sort prevalence --dir asc
  paybench show kpis --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON); err != nil {
				return err
			}
			q, err := qf.query()
			if err != nil {
				return err
			}
			svc, err := o.service(cmd.Context())
			if err != nil {
				return err
			}
			page, err := svc.Page(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			return renderPage(cmd.OutOrStdout(), page)
		},
	}
	qf.bind(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table or json")
	return cmd
}
