package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"

	"github.com/okian/paybench/internal/domain/dataset"
)

func fp(v float64) *float64 { return &v }

func money(p *float64) (string, bool) {
	if p == nil {
		return "", false
	}
	return strconv.FormatFloat(*p, 'f', -1, 64), true
}

func rateColumns() []Column[dataset.RoleRate] {
	num := func(get func(dataset.RoleRate) *float64) func(dataset.RoleRate) (float64, bool) {
		return func(r dataset.RoleRate) (float64, bool) {
			if p := get(r); p != nil {
				return *p, true
			}
			return 0, false
		}
	}
	text := func(get func(dataset.RoleRate) *float64) func(dataset.RoleRate) string {
		return func(r dataset.RoleRate) string {
			s, _ := money(get(r))
			return s
		}
	}
	median := func(r dataset.RoleRate) *float64 { return r.Median }
	average := func(r dataset.RoleRate) *float64 { return r.Average }
	return []Column[dataset.RoleRate]{
		{Key: "role", Header: "Role", Text: func(r dataset.RoleRate) string { return r.Role }},
		{Key: "category", Header: "Category", Text: func(r dataset.RoleRate) string { return r.Category }},
		{Key: "geography", Header: "Geography", Text: func(r dataset.RoleRate) string { return string(r.Geography) }},
		{Key: "median", Header: "Median", Text: text(median), Number: num(median)},
		{Key: "average", Header: "Average", Text: text(average), Number: num(average)},
	}
}

func rateExport() []ExportColumn[dataset.RoleRate] {
	return []ExportColumn[dataset.RoleRate]{
		{Header: "Role", Value: func(r dataset.RoleRate) (string, bool) { return r.Role, true }},
		{Header: "Geography", Value: func(r dataset.RoleRate) (string, bool) { return string(r.Geography), true }},
		{Header: "Median", Value: func(r dataset.RoleRate) (string, bool) { return money(r.Median) }, Placeholder: Placeholder},
		{Header: "Average", Value: func(r dataset.RoleRate) (string, bool) { return money(r.Average) }, Placeholder: ""},
	}
}

func sampleRates() []dataset.RoleRate {
	return []dataset.RoleRate{
		{Role: "Entry Level", Category: "Summary", Geography: dataset.GeoTotal, Median: fp(26357), Average: fp(26612)},
		{Role: "Entry Level", Category: "Summary", Geography: dataset.GeoInsideLondon, Median: fp(26087)},
		{Role: "Entry Level", Category: "Summary", Geography: dataset.GeoOutsideLondon, Average: fp(28398)},
		{Role: "Area/Operations Manager", Category: "Housing Management", Geography: dataset.GeoTotal, Median: fp(52650)},
		{Role: "Project/Service Manager", Category: "Care & Support", Geography: dataset.GeoTotal, Median: fp(42300)},
		{Role: "Cook/Chef", Category: "Care & Support", Geography: dataset.GeoTotal, Median: fp(24850)},
		{Role: "Cook/Chef", Category: "Care & Support", Geography: dataset.GeoOutsideLondon, Average: fp(24120)},
	}
}

func roles(rows []dataset.RoleRate) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Role + "/" + string(r.Geography)
	}
	return out
}

func newRateEngine(opts ...Option) *Engine[dataset.RoleRate] {
	e, err := New(sampleRates(), rateColumns(), opts...)
	So(err, ShouldBeNil)
	return e
}

func TestNewEngine(t *testing.T) {
	Convey("Given column definitions", t, func() {
		Convey("When no columns are supplied", func() {
			_, err := New[dataset.RoleRate](nil, nil)

			Convey("Then construction should fail", func() {
				So(errors.Is(err, ErrInvalidColumn), ShouldBeTrue)
			})
		})

		Convey("When a column key repeats", func() {
			cols := rateColumns()
			cols = append(cols, cols[0])
			_, err := New(sampleRates(), cols)

			Convey("Then construction should fail", func() {
				So(errors.Is(err, ErrInvalidColumn), ShouldBeTrue)
			})
		})

		Convey("When the search column is unknown", func() {
			_, err := New(sampleRates(), rateColumns(), WithSearchColumn("salary"))

			Convey("Then construction should fail", func() {
				So(errors.Is(err, ErrUnknownColumn), ShouldBeTrue)
			})
		})
	})
}

func TestSearch(t *testing.T) {
	Convey("Given an engine over role rates", t, func() {
		e := newRateEngine()
		all := e.VisibleRows()

		Convey("When the search term is empty", func() {
			e.SetSearchTerm("")

			Convey("Then every row should be visible in source order", func() {
				So(cmp.Diff(sampleRates(), e.VisibleRows()), ShouldBeEmpty)
				So(cmp.Diff(all, e.VisibleRows()), ShouldBeEmpty)
			})
		})

		Convey("When searching for manager in any case", func() {
			e.SetSearchTerm("MANAGER")
			got := roles(e.VisibleRows())

			Convey("Then only the two manager rows should remain", func() {
				So(got, ShouldResemble, []string{"Area/Operations Manager/Total", "Project/Service Manager/Total"})
			})
		})

		Convey("When the search term contains pattern characters", func() {
			e.SetSearchTerm("Area/Operations")
			literal := len(e.VisibleRows())
			e.SetSearchTerm(".*")

			Convey("Then they should match literally", func() {
				So(literal, ShouldEqual, 1)
				So(e.VisibleRows(), ShouldBeEmpty)
				So(e.VisibleRows(), ShouldNotBeNil)
			})
		})

		Convey("When searching then clearing", func() {
			e.SetSearchTerm("chef")
			e.SetSearchTerm("")

			Convey("Then the full set should return", func() {
				So(e.VisibleRows(), ShouldHaveLength, len(sampleRates()))
			})
		})
	})
}

func TestColumnFilters(t *testing.T) {
	Convey("Given an engine over role rates", t, func() {
		e := newRateEngine()

		Convey("When filtering geography to Outside London", func() {
			So(e.SetColumnFilter("geography", "Outside London"), ShouldBeNil)
			e.SetSearchTerm("entry")
			rows := e.VisibleRows()

			Convey("Then exactly one Entry Level row should remain with no median", func() {
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Median, ShouldBeNil)

				var buf bytes.Buffer
				So(e.ExportCSV(&buf, rateExport()), ShouldBeNil)
				records, err := csv.NewReader(&buf).ReadAll()
				So(err, ShouldBeNil)
				So(records[1][2], ShouldEqual, Placeholder)
				So(records[1][3], ShouldEqual, "28398")
			})
		})

		Convey("When two filters combine", func() {
			So(e.SetColumnFilter("geography", "Total"), ShouldBeNil)
			So(e.SetColumnFilter("category", "Care & Support"), ShouldBeNil)

			Convey("Then both must match", func() {
				So(roles(e.VisibleRows()), ShouldResemble, []string{"Project/Service Manager/Total", "Cook/Chef/Total"})
			})

			Convey("And clearing one with all widens the view", func() {
				So(e.SetColumnFilter("category", "all"), ShouldBeNil)
				So(e.VisibleRows(), ShouldHaveLength, 4)
				So(e.State().Filters, ShouldResemble, map[string]string{"geography": "Total"})
			})
		})

		Convey("When filtering an unknown column", func() {
			err := e.SetColumnFilter("salary", "1")

			Convey("Then ErrUnknownColumn should be returned", func() {
				So(errors.Is(err, ErrUnknownColumn), ShouldBeTrue)
			})
		})

		Convey("When nothing matches", func() {
			So(e.SetColumnFilter("geography", "Wider Market London"), ShouldBeNil)

			Convey("Then the view is empty and the CSV still has its header", func() {
				So(e.VisibleRows(), ShouldNotBeNil)
				So(e.VisibleRows(), ShouldBeEmpty)

				var buf bytes.Buffer
				So(e.ExportCSV(&buf, rateExport()), ShouldBeNil)
				So(buf.String(), ShouldEqual, "Role,Geography,Median,Average\n")
			})
		})
	})
}

func TestSorting(t *testing.T) {
	Convey("Given an engine over role rates", t, func() {
		e := newRateEngine()

		Convey("When sorting by median ascending then descending", func() {
			So(e.SetSort("median", Asc), ShouldBeNil)
			asc := roles(e.VisibleRows())
			So(e.SetSort("median", Desc), ShouldBeNil)
			desc := roles(e.VisibleRows())

			Convey("Then present keys reverse and absent keys stay last", func() {
				So(asc, ShouldResemble, []string{
					"Cook/Chef/Total",
					"Entry Level/Inside London",
					"Entry Level/Total",
					"Project/Service Manager/Total",
					"Area/Operations Manager/Total",
					"Entry Level/Outside London",
					"Cook/Chef/Outside London",
				})
				So(desc, ShouldResemble, []string{
					"Area/Operations Manager/Total",
					"Project/Service Manager/Total",
					"Entry Level/Total",
					"Entry Level/Inside London",
					"Cook/Chef/Total",
					"Entry Level/Outside London",
					"Cook/Chef/Outside London",
				})
			})
		})

		Convey("When sorting by a text column", func() {
			So(e.SetSort("role", Asc), ShouldBeNil)
			rows := e.VisibleRows()

			Convey("Then rows should collate and keep source order for ties", func() {
				So(roles(rows), ShouldResemble, []string{
					"Area/Operations Manager/Total",
					"Cook/Chef/Total",
					"Cook/Chef/Outside London",
					"Entry Level/Total",
					"Entry Level/Inside London",
					"Entry Level/Outside London",
					"Project/Service Manager/Total",
				})
			})
		})

		Convey("When sorting is cleared", func() {
			So(e.SetSort("median", Desc), ShouldBeNil)
			So(e.SetSort("", Unsorted), ShouldBeNil)

			Convey("Then source order should be restored", func() {
				So(cmp.Diff(sampleRates(), e.VisibleRows()), ShouldBeEmpty)
			})
		})

		Convey("When sorting an unknown column", func() {
			Convey("Then ErrUnknownColumn should be returned", func() {
				So(errors.Is(e.SetSort("salary", Asc), ErrUnknownColumn), ShouldBeTrue)
				So(errors.Is(e.ToggleSort("salary"), ErrUnknownColumn), ShouldBeTrue)
			})
		})
	})
}

func TestCollationLanguage(t *testing.T) {
	Convey("Given role names with a diacritic", t, func() {
		rows := []dataset.RoleRate{{Role: "Zeta"}, {Role: "Öland"}, {Role: "Oslo"}}
		sorted := func(opts ...Option) []string {
			e, err := New(rows, rateColumns(), opts...)
			So(err, ShouldBeNil)
			So(e.SetSort("role", Asc), ShouldBeNil)
			out := []string{}
			for _, r := range e.VisibleRows() {
				out = append(out, r.Role)
			}
			return out
		}

		Convey("Then British English folds the accent into its base letter", func() {
			So(sorted(), ShouldResemble, []string{"Öland", "Oslo", "Zeta"})
		})

		Convey("Then Swedish collation places it after z", func() {
			So(sorted(WithLanguage(language.Swedish)), ShouldResemble, []string{"Oslo", "Zeta", "Öland"})
		})
	})
}

func TestToggleSort(t *testing.T) {
	Convey("Given a three-state engine", t, func() {
		e := newRateEngine()

		Convey("When toggling the same column three times", func() {
			var seen []Direction
			for i := 0; i < 3; i++ {
				So(e.ToggleSort("median"), ShouldBeNil)
				seen = append(seen, e.State().Sort.Direction)
			}

			Convey("Then it should cycle asc, desc, unsorted", func() {
				So(seen, ShouldResemble, []Direction{Asc, Desc, Unsorted})
			})
		})

		Convey("When toggling a different column", func() {
			So(e.ToggleSort("median"), ShouldBeNil)
			So(e.ToggleSort("median"), ShouldBeNil)
			So(e.ToggleSort("role"), ShouldBeNil)

			Convey("Then the new column should start ascending", func() {
				So(e.State().Sort, ShouldResemble, SortState{Column: "role", Direction: Asc})
			})
		})
	})

	Convey("Given a two-state engine", t, func() {
		e := newRateEngine(WithTwoStateSort())

		Convey("When toggling three times", func() {
			var seen []Direction
			for i := 0; i < 3; i++ {
				So(e.ToggleSort("average"), ShouldBeNil)
				seen = append(seen, e.State().Sort.Direction)
			}

			Convey("Then it should alternate asc and desc", func() {
				So(seen, ShouldResemble, []Direction{Asc, Desc, Asc})
			})
		})
	})
}

func TestExportRoundTrip(t *testing.T) {
	Convey("Given a filtered and sorted view", t, func() {
		e := newRateEngine()
		So(e.SetColumnFilter("geography", "Total"), ShouldBeNil)
		So(e.SetSort("median", Desc), ShouldBeNil)
		visible := e.VisibleRows()

		Convey("When exporting and parsing the CSV back", func() {
			var buf bytes.Buffer
			So(e.ExportCSV(&buf, rateExport()), ShouldBeNil)
			records, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then row count and values should match the view", func() {
				So(records, ShouldHaveLength, len(visible)+1)
				for i, row := range visible {
					So(records[i+1][0], ShouldEqual, row.Role)
					want, _ := money(row.Median)
					So(records[i+1][2], ShouldEqual, want)
				}
			})
		})
	})

	Convey("Given values that need quoting", t, func() {
		rows := []dataset.RoleRate{{Role: "Officer, \"Senior\"\nGrade 2", Geography: dataset.GeoTotal}}
		var buf bytes.Buffer
		err := WriteCSV(&buf, rows, rateExport()[:1])

		Convey("Then the parsed value should survive unchanged", func() {
			So(err, ShouldBeNil)
			records, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)
			So(records[1][0], ShouldEqual, rows[0].Role)
		})
	})

	Convey("Given a failing writer", t, func() {
		e := newRateEngine()
		err := e.ExportCSV(failingWriter{}, rateExport())

		Convey("Then the failure should be reported", func() {
			So(errors.Is(err, ErrExport), ShouldBeTrue)
		})
	})
}

func TestObserversAndState(t *testing.T) {
	Convey("Given a subscribed observer", t, func() {
		e := newRateEngine()
		var states []State
		cancel := e.Subscribe(func(s State) { states = append(states, s) })

		Convey("When state changes and repeats", func() {
			e.SetSearchTerm("chef")
			e.SetSearchTerm("chef")
			So(e.SetColumnFilter("geography", "Total"), ShouldBeNil)
			So(e.SetColumnFilter("geography", "Total"), ShouldBeNil)

			Convey("Then only effective changes should be delivered", func() {
				So(states, ShouldHaveLength, 2)
				So(states[0].Search, ShouldEqual, "chef")
				So(states[1].Filters["geography"], ShouldEqual, "Total")
			})

			Convey("And snapshots should not alias engine state", func() {
				states[1].Filters["geography"] = "Inside London"
				So(e.State().Filters["geography"], ShouldEqual, "Total")
			})
		})

		Convey("When the subscription is cancelled", func() {
			cancel()
			e.SetSearchTerm("cook")

			Convey("Then no further states should arrive", func() {
				So(states, ShouldBeEmpty)
			})
		})
	})
}

func TestParseDirectionAndFileName(t *testing.T) {
	Convey("Given direction strings", t, func() {
		asc, err1 := ParseDirection("ASC")
		desc, err2 := ParseDirection("descending")
		none, err3 := ParseDirection("")
		_, bad := ParseDirection("sideways")

		Convey("Then they should parse", func() {
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)
			So(err3, ShouldBeNil)
			So(asc, ShouldEqual, Asc)
			So(desc.String(), ShouldEqual, "desc")
			So(none, ShouldEqual, Unsorted)
			So(errors.Is(bad, ErrInvalidDirection), ShouldBeTrue)
		})
	})

	Convey("Given a dataset name and a date", t, func() {
		name := FileName("role-rates", time.Date(2024, 10, 3, 15, 4, 5, 0, time.UTC))

		Convey("Then the CSV file name should embed the ISO date", func() {
			So(name, ShouldEqual, "role-rates-2024-10-03.csv")
		})
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
