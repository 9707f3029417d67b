// Package table implements a filter, search and sort view over in-memory
// rows, with CSV export of whatever is currently visible.
package table

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction of a column sort.
type Direction int

// Sort directions.
const (
	Unsorted Direction = iota
	Asc
	Desc
)

// String returns "asc", "desc" or "" for unsorted.
func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return ""
	}
}

// ParseDirection accepts asc, desc, ascending, descending and "" (unsorted).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unsorted, nil
	case "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	default:
		return Unsorted, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// AllValues clears a column filter.
const AllValues = "all"

// Column describes one field of T. Text is used for filtering, searching
// and text sorting. Number, when set, makes the column sort numerically; a
// false second result marks the value as absent.
type Column[T any] struct {
	Key    string
	Header string
	Text   func(T) string
	Number func(T) (float64, bool)
}

// SortState is the active sort.
type SortState struct {
	Column    string
	Direction Direction
}

// State is an immutable copy of the view state.
type State struct {
	Search  string
	Filters map[string]string
	Sort    SortState
}

// Engine derives the visible rows from a fixed row set. It is owned by a
// single caller and is not safe for concurrent use.
type Engine[T any] struct {
	rows      []T
	columns   map[string]Column[T]
	search    string
	twoState  bool
	folder    cases.Caser
	collator  *collate.Collator
	state     State
	observers map[int]func(State)
	nextObs   int
}

// New builds an engine over rows. The rows slice is not copied and must not
// be mutated while the engine is in use.
func New[T any](rows []T, columns []Column[T], opts ...Option) (*Engine[T], error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidColumn)
	}
	s := settings{lang: language.BritishEnglish}
	for _, opt := range opts {
		opt(&s)
	}

	e := &Engine[T]{
		rows:      rows,
		columns:   make(map[string]Column[T], len(columns)),
		twoState:  s.twoState,
		folder:    cases.Fold(),
		collator:  collate.New(s.lang, collate.IgnoreCase),
		state:     State{Filters: map[string]string{}},
		observers: map[int]func(State){},
	}
	for _, c := range columns {
		if c.Key == "" || c.Text == nil {
			return nil, fmt.Errorf("%w: column %q needs a key and a text accessor", ErrInvalidColumn, c.Key)
		}
		if _, dup := e.columns[c.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidColumn, c.Key)
		}
		e.columns[c.Key] = c
	}

	e.search = columns[0].Key
	if s.searchColumn != "" {
		if _, ok := e.columns[s.searchColumn]; !ok {
			return nil, fmt.Errorf("%w: search column %q", ErrUnknownColumn, s.searchColumn)
		}
		e.search = s.searchColumn
	}
	return e, nil
}

// Len is the number of source rows.
func (e *Engine[T]) Len() int { return len(e.rows) }

// SetSearchTerm sets the case-insensitive literal substring matched against
// the search column. An empty term matches every row.
func (e *Engine[T]) SetSearchTerm(term string) {
	if term == e.state.Search {
		return
	}
	e.state.Search = term
	e.notify()
}

// SetColumnFilter keeps rows whose column text equals value. The value
// "all" (or an empty value) removes the filter on that column.
func (e *Engine[T]) SetColumnFilter(column, value string) error {
	if _, ok := e.columns[column]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if value == "" || strings.EqualFold(value, AllValues) {
		if _, ok := e.state.Filters[column]; !ok {
			return nil
		}
		e.state.Filters = cloneFilters(e.state.Filters)
		delete(e.state.Filters, column)
		e.notify()
		return nil
	}
	if cur, ok := e.state.Filters[column]; ok && cur == value {
		return nil
	}
	e.state.Filters = cloneFilters(e.state.Filters)
	e.state.Filters[column] = value
	e.notify()
	return nil
}

// SetSort orders the visible rows. Unsorted restores source order.
func (e *Engine[T]) SetSort(column string, dir Direction) error {
	if dir == Unsorted {
		if e.state.Sort.Direction == Unsorted {
			return nil
		}
		e.state.Sort = SortState{}
		e.notify()
		return nil
	}
	if _, ok := e.columns[column]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if dir != Asc && dir != Desc {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, dir)
	}
	next := SortState{Column: column, Direction: dir}
	if next == e.state.Sort {
		return nil
	}
	e.state.Sort = next
	e.notify()
	return nil
}

// ToggleSort cycles the sort on column: asc, desc, unsorted. Engines built
// with WithTwoStateSort alternate asc and desc. A different column starts
// at asc.
func (e *Engine[T]) ToggleSort(column string) error {
	if _, ok := e.columns[column]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	cur := e.state.Sort
	next := SortState{Column: column, Direction: Asc}
	if cur.Column == column {
		switch cur.Direction {
		case Asc:
			next.Direction = Desc
		case Desc:
			if !e.twoState {
				next = SortState{}
			}
		}
	}
	e.state.Sort = next
	e.notify()
	return nil
}

// VisibleRows applies the column filters, then the search term, then the
// sort. It never returns nil.
func (e *Engine[T]) VisibleRows() []T {
	out := make([]T, 0, len(e.rows))
	needle := e.folder.String(e.state.Search)
	searchCol := e.columns[e.search]
	for _, row := range e.rows {
		if !e.matchesFilters(row) {
			continue
		}
		if needle != "" && !strings.Contains(e.folder.String(searchCol.Text(row)), needle) {
			continue
		}
		out = append(out, row)
	}
	if e.state.Sort.Direction != Unsorted {
		e.sortRows(out)
	}
	return out
}

func (e *Engine[T]) matchesFilters(row T) bool {
	for key, want := range e.state.Filters {
		if e.columns[key].Text(row) != want {
			return false
		}
	}
	return true
}

// sortRows is stable in both directions. Absent numeric values go last
// whichever way the column is sorted.
func (e *Engine[T]) sortRows(rows []T) {
	col := e.columns[e.state.Sort.Column]
	desc := e.state.Sort.Direction == Desc

	if col.Number != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			a, aok := col.Number(rows[i])
			b, bok := col.Number(rows[j])
			switch {
			case !aok || !bok:
				return aok && !bok
			case desc:
				return a > b
			default:
				return a < b
			}
		})
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := e.collator.CompareString(col.Text(rows[i]), col.Text(rows[j]))
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// State returns a copy of the current view state.
func (e *Engine[T]) State() State {
	s := e.state
	s.Filters = cloneFilters(e.state.Filters)
	return s
}

// Subscribe registers fn to receive the state after every effective change.
// The returned func removes the subscription.
func (e *Engine[T]) Subscribe(fn func(State)) func() {
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	return func() { delete(e.observers, id) }
}

func (e *Engine[T]) notify() {
	if len(e.observers) == 0 {
		return
	}
	ids := make([]int, 0, len(e.observers))
	for id := range e.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fn, ok := e.observers[id]; ok {
			fn(e.State())
		}
	}
}

func cloneFilters(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m)
}
