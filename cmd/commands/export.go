package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/domain/chart"
	"github.com/okian/paybench/pkg/metrics"
)

const (
	exportDirPerm  = 0o755
	exportFilePerm = 0o644
)

func newExportCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write table CSVs and chart images to disk",
	}
	cmd.AddCommand(newExportCSVCommand(o), newExportChartCommand(o))
	return cmd
}

func newExportCSVCommand(o *rootOptions) *cobra.Command {
	var (
		qf  queryFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "csv SECTION[/TABLE]",
		Short: "Export the visible rows of section tables as CSV",
		Long: `Export writes one CSV per table, named <dataset>-<YYYY-MM-DD>.csv.
Without a table id every table of the section is exported. Search, filter
and sort flags apply before export, so the file holds exactly the rows the
dashboard would show.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			q, err := qf.query()
			if err != nil {
				return err
			}
			svc, err := o.service(ctx)
			if err != nil {
				return err
			}
			section, tableID, _ := strings.Cut(args[0], "/")
			ids := []string{tableID}
			if tableID == "" {
				page, err := svc.Page(ctx, section, q)
				if err != nil {
					return err
				}
				if len(page.Tables) == 0 {
					return fmt.Errorf("%w: section %s has no tables", service.ErrTableNotFound, section)
				}
				ids = ids[:0]
				for _, t := range page.Tables {
					ids = append(ids, t.ID)
				}
			}
			dir := o.outDir(out)
			for _, id := range ids {
				var buf bytes.Buffer
				name, err := svc.TableCSV(ctx, section, id, q, &buf)
				if err != nil {
					return err
				}
				path, err := writeExport(dir, name, buf.Bytes())
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), path); err != nil {
					return err
				}
			}
			return nil
		},
	}
	qf.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default from config export_dir)")
	return cmd
}

func newExportChartCommand(o *rootOptions) *cobra.Command {
	var (
		qf     queryFlags
		out    string
		kind   string
		format = string(chart.PNG)
	)
	cmd := &cobra.Command{
		Use:   "chart SECTION/CHART",
		Short: "Export a chart as a PNG or SVG image",
		Long: `Export renders one chart and writes it as chart-<title>-<YYYY-MM-DD>.png
(or .svg). --kind switches the encoding when the chart allows it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			section, chartID, ok := strings.Cut(args[0], "/")
			if !ok || section == "" || chartID == "" {
				return fmt.Errorf("%w: chart must be given as SECTION/CHART, got %q", errUsage, args[0])
			}
			f, err := chart.ParseFormat(format)
			if err != nil {
				return err
			}
			if kind != "" {
				qf.kinds = append(qf.kinds, chartID+":"+kind)
			}
			q, err := qf.query()
			if err != nil {
				return err
			}
			svc, err := o.service(ctx)
			if err != nil {
				return err
			}
			a, err := svc.Chart(ctx, section, chartID, q)
			if err != nil {
				return err
			}

			var (
				buf  bytes.Buffer
				name string
			)
			if f == chart.PNG {
				name, err = a.ExportImage(&buf)
			} else {
				err = a.Rasterize(&buf, f)
				r, _ := a.Current()
				name = strings.TrimSuffix(chart.ImageFileName(r.Title, o.now()), ".png") + ".svg"
			}
			if err != nil {
				metrics.RecordExport(string(f), "failed")
				return err
			}
			metrics.RecordExport(string(f), "ok")
			path, err := writeExport(o.outDir(out), name, buf.Bytes())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	qf.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default from config export_dir)")
	cmd.Flags().StringVar(&kind, "as", "", "chart kind: bar, line or pie")
	cmd.Flags().StringVarP(&format, "format", "f", format, "image format: png or svg")
	return cmd
}

func (o *rootOptions) outDir(flag string) string {
	if flag != "" {
		return flag
	}
	return o.cfg.ExportDir
}

func writeExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, exportDirPerm); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, exportFilePerm); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
