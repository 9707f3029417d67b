package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"

	service "github.com/okian/paybench/internal/app"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("%w: format %q, want one of %s", errUsage, format, strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderGrid draws headers and rows with a rounded border. Columns listed
// in numeric are right aligned.
func renderGrid(headers []string, rows [][]string, numeric []bool) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col < len(numeric) && numeric[col]:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}

func renderTable(w io.Writer, t service.Table) error {
	headers := make([]string, len(t.Headers))
	numeric := make([]bool, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = h.Label
		switch h.SortDir {
		case "asc":
			headers[i] += " ↑"
		case "desc":
			headers[i] += " ↓"
		}
		numeric[i] = h.Numeric
	}
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = make([]string, len(r))
		for j, c := range r {
			rows[i][j] = c.Text
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n")
	if t.Empty {
		b.WriteString(mutedStyle.Render("No rows match the current search and filters."))
		b.WriteString("\n")
	} else {
		b.WriteString(renderGrid(headers, rows, numeric))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d rows", len(t.Rows), t.Total)))
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func renderPage(w io.Writer, p service.Page) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s %s, published %s", p.SurveyName, p.Version, p.Published)))
	b.WriteString("\n\n")

	for _, para := range p.Narrative {
		b.WriteString(titleStyle.Render(para.Title))
		b.WriteString("\n")
		b.WriteString(para.Body)
		b.WriteString("\n\n")
	}

	if len(p.Metrics) > 0 {
		rows := make([][]string, len(p.Metrics))
		for i, m := range p.Metrics {
			rows[i] = []string{m.Label, m.Display}
		}
		b.WriteString(renderGrid([]string{"Metric", "Value"}, rows, []bool{false, true}))
		b.WriteString("\n\n")
	}

	if p.Filter != nil && len(p.Filter.Selection.Regions)+len(p.Filter.SelectedOrgs) > 0 {
		parts := append([]string(nil), p.Filter.Selection.Regions...)
		for _, o := range p.Filter.SelectedOrgs {
			parts = append(parts, o.Name)
		}
		b.WriteString(mutedStyle.Render("Filtered by: " + strings.Join(parts, ", ")))
		b.WriteString("\n\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, t := range p.Tables {
		if err := renderTable(w, t); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}

	if len(p.Charts) > 0 {
		rows := make([][]string, len(p.Charts))
		for i, c := range p.Charts {
			rows[i] = []string{c.ID, c.Rendering.Title, string(c.Rendering.Kind), c.FileName}
		}
		if _, err := io.WriteString(w, renderGrid([]string{"Chart", "Title", "Kind", "File"}, rows, nil)+"\n"); err != nil {
			return err
		}
	}
	return nil
}
