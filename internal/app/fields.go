package service

import (
	"fmt"
	"io"

	"github.com/okian/paybench/internal/domain/table"
)

// field is one column of a section table. display feeds the page, export
// feeds CSV, text and number drive filtering and sorting.
type field[T any] struct {
	key     string
	header  string
	numeric bool
	text    func(T) string
	number  func(T) (float64, bool)
	display func(T) (string, bool)
	export  func(T) (string, bool)
}

func textField[T any](key, header string, get func(T) string) field[T] {
	present := func(r T) (string, bool) {
		v := get(r)
		return v, v != ""
	}
	return field[T]{key: key, header: header, text: get, display: present, export: present}
}

func optionalField[T any](key, header string, get func(T) *float64, format func(float64) string) field[T] {
	number := func(r T) (float64, bool) {
		if p := get(r); p != nil {
			return *p, true
		}
		return 0, false
	}
	return numberField(key, header, number, format)
}

func numberField[T any](key, header string, get func(T) (float64, bool), format func(float64) string) field[T] {
	return field[T]{
		key:     key,
		header:  header,
		numeric: true,
		number:  get,
		text: func(r T) string {
			if v, ok := get(r); ok {
				return raw(v)
			}
			return ""
		},
		display: func(r T) (string, bool) {
			if v, ok := get(r); ok {
				return format(v), true
			}
			return "", false
		},
		export: func(r T) (string, bool) {
			if v, ok := get(r); ok {
				return raw(v), true
			}
			return "", false
		},
	}
}

func intField[T any](key, header string, get func(T) int) field[T] {
	return numberField(key, header, func(r T) (float64, bool) { return float64(get(r)), true },
		func(v float64) string { return formatCount(int(v)) })
}

// tableSpec declares a section table over rows of T.
type tableSpec[T any] struct {
	id       string
	title    string
	dataset  string
	search   string
	filters  []string
	sortKey  string
	sortDir  table.Direction
	twoState bool
	fields   []field[T]
	// choices lists filter values for a column in place of the values
	// found in the rows.
	choices map[string][]string
}

// Cell is a rendered table value.
type Cell struct {
	Text    string `json:"text"`
	Absent  bool   `json:"absent,omitempty"`
	Numeric bool   `json:"numeric,omitempty"`
}

// Header is a table column heading. NextSort is the direction the next
// click applies, or "none" when it clears the sort.
type Header struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Numeric  bool   `json:"numeric,omitempty"`
	SortDir  string `json:"sort_dir,omitempty"`
	NextSort string `json:"next_sort,omitempty"`
}

// FilterControl is a selectable column filter.
type FilterControl struct {
	Column   string   `json:"column"`
	Label    string   `json:"label"`
	Values   []string `json:"values"`
	Selected string   `json:"selected"`
}

// Table is a rendered section table.
type Table struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Dataset  string          `json:"dataset"`
	Headers  []Header        `json:"headers"`
	Rows     [][]Cell        `json:"rows"`
	Total    int             `json:"total"`
	Empty    bool            `json:"empty"`
	Search   string          `json:"search"`
	Filters  []FilterControl `json:"filters,omitempty"`
	Sort     string          `json:"sort,omitempty"`
	Dir      string          `json:"dir,omitempty"`
	CSVPath  string          `json:"csv_path"`
	FileName string          `json:"file_name"`
}

type tableResult struct {
	view   Table
	export func(w io.Writer) error
}

func (t tableSpec[T]) engine(rows []T) (*table.Engine[T], error) {
	cols := make([]table.Column[T], len(t.fields))
	for i, f := range t.fields {
		cols[i] = table.Column[T]{Key: f.key, Header: f.header, Text: f.text, Number: f.number}
	}
	opts := []table.Option{table.WithSearchColumn(t.search), table.WithLanguage(locale)}
	if t.twoState {
		opts = append(opts, table.WithTwoStateSort())
	}
	return table.New(rows, cols, opts...)
}

func (t tableSpec[T]) exportColumns() []table.ExportColumn[T] {
	out := make([]table.ExportColumn[T], len(t.fields))
	for i, f := range t.fields {
		out[i] = table.ExportColumn[T]{Header: f.header, Value: f.export}
		if f.numeric {
			out[i].Placeholder = Placeholder
		}
	}
	return out
}

func (t tableSpec[T]) hasColumn(key string) bool {
	for _, f := range t.fields {
		if f.key == key {
			return true
		}
	}
	return false
}

// build applies the query to a fresh engine and renders the visible rows.
func (t tableSpec[T]) build(section string, rows []T, q Query, fileName string) (tableResult, []T, error) {
	eng, err := t.engine(rows)
	if err != nil {
		return tableResult{}, nil, err
	}

	eng.SetSearchTerm(q.Search)
	for _, key := range t.filters {
		if v := q.filterValue(key); v != "" {
			if err := eng.SetColumnFilter(key, v); err != nil {
				return tableResult{}, nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
			}
		}
	}

	sortKey, dir := t.sortKey, t.sortDir
	switch {
	case q.Sort == SortNone:
		sortKey, dir = "", table.Unsorted
	case q.Sort != "":
		if !t.hasColumn(q.Sort) {
			return tableResult{}, nil, fmt.Errorf("%w: %w: %q", ErrBadQuery, table.ErrUnknownColumn, q.Sort)
		}
		d, err := table.ParseDirection(q.Dir)
		if err != nil {
			return tableResult{}, nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
		}
		if d == table.Unsorted {
			d = table.Asc
		}
		sortKey, dir = q.Sort, d
	}
	if err := eng.SetSort(sortKey, dir); err != nil {
		return tableResult{}, nil, fmt.Errorf("%w: %w", ErrBadQuery, err)
	}

	visible := eng.VisibleRows()
	state := eng.State()

	view := Table{
		ID:       t.id,
		Title:    t.title,
		Dataset:  t.dataset,
		Rows:     make([][]Cell, 0, len(visible)),
		Total:    eng.Len(),
		Empty:    len(visible) == 0,
		Search:   state.Search,
		Sort:     state.Sort.Column,
		Dir:      state.Sort.Direction.String(),
		CSVPath:  fmt.Sprintf("/api/sections/%s/tables/%s.csv", section, t.id),
		FileName: fileName,
	}
	for _, f := range t.fields {
		h := Header{Key: f.key, Label: f.header, Numeric: f.numeric}
		if state.Sort.Column == f.key {
			h.SortDir = state.Sort.Direction.String()
		}
		h.NextSort = t.nextSort(state.Sort, f.key)
		view.Headers = append(view.Headers, h)
	}
	for _, row := range visible {
		cells := make([]Cell, len(t.fields))
		for i, f := range t.fields {
			text, ok := f.display(row)
			if !ok {
				text = Placeholder
			}
			cells[i] = Cell{Text: text, Absent: !ok, Numeric: f.numeric}
		}
		view.Rows = append(view.Rows, cells)
	}
	for _, key := range t.filters {
		values, ok := t.choices[key]
		if !ok {
			values = distinct(rows, t.fieldOf(key).text)
		}
		view.Filters = append(view.Filters, FilterControl{
			Column:   key,
			Label:    t.headerOf(key),
			Values:   values,
			Selected: state.Filters[key],
		})
	}

	exportCols := t.exportColumns()
	return tableResult{
		view:   view,
		export: func(w io.Writer) error { return eng.ExportCSV(w, exportCols) },
	}, visible, nil
}

// nextSort mirrors Engine.ToggleSort so links can encode the next state.
func (t tableSpec[T]) nextSort(cur table.SortState, key string) string {
	if cur.Column != key || cur.Direction == table.Unsorted {
		return table.Asc.String()
	}
	if cur.Direction == table.Asc {
		return table.Desc.String()
	}
	if t.twoState {
		return table.Asc.String()
	}
	return SortNone
}

func (t tableSpec[T]) fieldOf(key string) field[T] {
	for _, f := range t.fields {
		if f.key == key {
			return f
		}
	}
	return field[T]{text: func(T) string { return "" }}
}

func (t tableSpec[T]) headerOf(key string) string {
	return t.fieldOf(key).header
}

func distinct[T any](rows []T, get func(T) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range rows {
		v := get(r)
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
