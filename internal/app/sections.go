package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/paybench/internal/adapters/repository"
	"github.com/okian/paybench/internal/domain/chart"
	"github.com/okian/paybench/internal/domain/dataset"
	"github.com/okian/paybench/internal/domain/filter"
	"github.com/okian/paybench/internal/domain/table"
)

// Section ids in navigation order.
const (
	SectionOverview    = "overview"
	SectionReflections = "reflections"
	SectionBenefits    = "benefits"
	SectionFrameworks  = "frameworks"
	SectionKPIs        = "kpis"
	SectionWages       = "wages"
	SectionRates       = "rates"
)

// Section describes a navigable report section.
type Section struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Path    string `json:"path"`
}

type chartSpec struct {
	id   string
	kind chart.Kind
	data []chart.Datum
	opts chart.Options
}

type content struct {
	narrative []Paragraph
	metrics   []Metric
	tables    []tableResult
	charts    []chartSpec
	filter    *FilterView
}

type sectionDef struct {
	Section
	build func(snap *dataset.Snapshot, q Query, now time.Time) (content, error)
}

var sections = []sectionDef{
	{Section: Section{ID: SectionOverview, Title: "Overview", Summary: "Headline figures and the organisations that took part."}, build: buildOverview},
	{Section: Section{ID: SectionReflections, Title: "Reflections", Summary: "What this year's results say about pay in the sector."}, build: buildReflections},
	{Section: Section{ID: SectionBenefits, Title: "Benefits", Summary: "Non-pay benefits and how widely they are offered."}, build: buildBenefits},
	{Section: Section{ID: SectionFrameworks, Title: "Pay Frameworks", Summary: "How participants structure pay progression."}, build: buildFrameworks},
	{Section: Section{ID: SectionKPIs, Title: "Workforce KPIs", Summary: "Sickness, turnover and agency spend by reporting year."}, build: buildKPIs},
	{Section: Section{ID: SectionWages, Title: "Wage Policy", Summary: "Statutory and voluntary wage floors and Real Living Wage adoption."}, build: buildWages},
	{Section: Section{ID: SectionRates, Title: "Salary Rates", Summary: "Lower quartile, median, upper quartile and average pay by role and geography."}, build: buildRates},
}

func init() { //nolint:gochecknoinits // paths derive from ids
	for i := range sections {
		sections[i].Path = "/sections/" + sections[i].ID
	}
}

func findSection(id string) (sectionDef, error) {
	for _, s := range sections {
		if s.ID == id {
			return s, nil
		}
	}
	return sectionDef{}, fmt.Errorf("%w: %q", ErrSectionNotFound, id)
}

func buildOverview(snap *dataset.Snapshot, q Query, now time.Time) (content, error) {
	regions := make([]string, 0, len(dataset.Regions()))
	for _, r := range dataset.Regions() {
		regions = append(regions, string(r))
	}
	panel := filter.NewPanel(regions, snap.OrgIDs())
	for _, raw := range q.Regions {
		r, err := dataset.ParseRegion(raw)
		if err != nil {
			return content{}, badQuery(err)
		}
		if err := panel.AddRegion(string(r)); err != nil {
			return content{}, badQuery(err)
		}
	}
	for _, id := range q.OrgIDs {
		if err := panel.AddOrg(id); err != nil {
			return content{}, badQuery(err)
		}
	}

	orgs := make([]dataset.Organisation, 0, len(snap.Organisations))
	for _, o := range snap.Organisations {
		if panel.Matches(string(o.Region), o.ID) {
			orgs = append(orgs, o)
		}
	}

	spec := tableSpec[dataset.Organisation]{
		id:      repository.DatasetOrganisations,
		title:   "Participating organisations",
		dataset: repository.DatasetOrganisations,
		search:  "name",
		fields: []field[dataset.Organisation]{
			textField("name", "Organisation", func(o dataset.Organisation) string { return o.Name }),
			textField("region", "Region", func(o dataset.Organisation) string { return string(o.Region) }),
			intField("headcount", "Headcount", func(o dataset.Organisation) int { return o.Headcount }),
			numberField("turnover", "Turnover", func(o dataset.Organisation) (float64, bool) { return o.TurnoverGBPm, true }, formatMillions),
			textField("working_week", "Working week (hours)", func(o dataset.Organisation) string { return o.WorkingWeek.String() }),
		},
	}
	tbl, visible, err := spec.build(SectionOverview, orgs, q, table.FileName(spec.dataset, now))
	if err != nil {
		return content{}, err
	}

	c := content{tables: []tableResult{tbl}}
	for _, m := range snap.Summary {
		c.metrics = append(c.metrics, Metric{Key: m.Key, Label: m.Label, Value: m.Value, Unit: m.Unit, Display: formatMetric(m.Value, m.Unit)})
	}
	if panel.State() == filter.HasSelections {
		headcount := 0
		for _, o := range orgs {
			headcount += o.Headcount
		}
		c.metrics = append(c.metrics,
			Metric{Key: "selected_orgs", Label: "Selected organisations", Value: float64(len(orgs)), Unit: "count", Display: formatCount(len(orgs))},
			Metric{Key: "selected_headcount", Label: "Selected headcount", Value: float64(headcount), Unit: "count", Display: formatCount(headcount)},
		)
	}

	headcount := make([]chart.Datum, 0, len(visible))
	for _, o := range visible {
		headcount = append(headcount, chart.Datum{Name: o.Name, Value: chart.Float(float64(o.Headcount))})
	}
	byRegion := make([]chart.Datum, 0, len(regions))
	for _, r := range regions {
		n := 0
		for _, o := range orgs {
			if string(o.Region) == r {
				n++
			}
		}
		if n > 0 {
			byRegion = append(byRegion, chart.Datum{Name: r, Value: chart.Float(float64(n))})
		}
	}
	c.charts = []chartSpec{
		{id: "headcount", kind: chart.Bar, data: headcount, opts: chart.Options{Title: "Headcount by organisation", AllowToggle: true}},
		{id: "regions", kind: chart.Pie, data: byRegion, opts: chart.Options{Title: "Organisations by region", AllowToggle: true}},
	}

	sel := panel.Snapshot()
	fv := &FilterView{
		State:            panel.State().String(),
		Selection:        sel,
		AvailableRegions: panel.AvailableRegions(),
	}
	for _, id := range sel.OrgIDs {
		o, _ := snap.Organisation(id)
		fv.SelectedOrgs = append(fv.SelectedOrgs, OrgOption{ID: id, Name: o.Name})
	}
	for _, id := range panel.AvailableOrgs() {
		o, _ := snap.Organisation(id)
		fv.AvailableOrgs = append(fv.AvailableOrgs, OrgOption{ID: id, Name: o.Name})
	}
	c.filter = fv
	return c, nil
}

func buildReflections(snap *dataset.Snapshot, _ Query, _ time.Time) (content, error) {
	c := content{}
	for _, r := range snap.Reflections {
		c.narrative = append(c.narrative, Paragraph{Title: r.Title, Body: r.Body})
	}

	var data []chart.Datum
	for _, g := range dataset.Geographies() {
		for _, r := range snap.RoleRates {
			if r.Role != "All roles" || r.Geography != g || !r.HasQuartiles() {
				continue
			}
			data = append(data, chart.Datum{
				Name:   string(g),
				Value:  chart.Float(*r.Median),
				Series: map[string]float64{"lq": *r.LQ, "median": *r.Median, "uq": *r.UQ},
			})
		}
	}
	c.charts = []chartSpec{{
		id:   "pay-by-geography",
		kind: chart.Bar,
		data: data,
		opts: chart.Options{Title: "All roles pay by geography", SeriesKeys: []string{"lq", "median", "uq"}, AllowToggle: true},
	}}
	return c, nil
}

func buildBenefits(snap *dataset.Snapshot, q Query, now time.Time) (content, error) {
	spec := tableSpec[dataset.Benefit]{
		id:       repository.DatasetBenefits,
		title:    "Benefits offered",
		dataset:  repository.DatasetBenefits,
		search:   "name",
		filters:  []string{"category"},
		sortKey:  "prevalence",
		sortDir:  table.Desc,
		twoState: true,
		fields: []field[dataset.Benefit]{
			textField("name", "Benefit", func(b dataset.Benefit) string { return b.Name }),
			textField("category", "Category", func(b dataset.Benefit) string { return b.Category }),
			numberField("prevalence", "Organisations offering", func(b dataset.Benefit) (float64, bool) { return b.PrevalencePct, true }, formatPercent),
			textField("note", "Note", func(b dataset.Benefit) string { return b.Note }),
		},
	}
	tbl, visible, err := spec.build(SectionBenefits, snap.Benefits, q, table.FileName(spec.dataset, now))
	if err != nil {
		return content{}, err
	}
	data := make([]chart.Datum, 0, len(visible))
	for _, b := range visible {
		data = append(data, chart.Datum{Name: b.Name, Value: chart.Float(b.PrevalencePct)})
	}
	return content{
		tables: []tableResult{tbl},
		charts: []chartSpec{{id: "prevalence", kind: chart.Bar, data: data, opts: chart.Options{Title: "Benefit prevalence (%)", AllowToggle: true}}},
	}, nil
}

func buildFrameworks(snap *dataset.Snapshot, q Query, now time.Time) (content, error) {
	spec := tableSpec[dataset.Framework]{
		id:      repository.DatasetFrameworks,
		title:   "Pay frameworks in use",
		dataset: repository.DatasetFrameworks,
		search:  "name",
		fields: []field[dataset.Framework]{
			textField("name", "Framework", func(f dataset.Framework) string { return f.Name }),
			numberField("share", "Share of organisations", func(f dataset.Framework) (float64, bool) { return f.SharePct, true }, formatPercent),
			textField("description", "Description", func(f dataset.Framework) string { return f.Description }),
		},
	}
	tbl, visible, err := spec.build(SectionFrameworks, snap.Frameworks, q, table.FileName(spec.dataset, now))
	if err != nil {
		return content{}, err
	}
	data := make([]chart.Datum, 0, len(visible))
	for _, f := range visible {
		data = append(data, chart.Datum{Name: f.Name, Value: chart.Float(f.SharePct)})
	}
	return content{
		tables: []tableResult{tbl},
		charts: []chartSpec{{id: "share", kind: chart.Pie, data: data, opts: chart.Options{Title: "Pay framework share", AllowToggle: true}}},
	}, nil
}

var kpiSeries = []struct {
	key   string
	label string
	get   func(dataset.KPI) *float64
}{
	{"sickness_ltr_pct", "Sickness (LTR)", func(k dataset.KPI) *float64 { return k.SicknessLTRPct }},
	{"turnover_global_pct", "Turnover (all)", func(k dataset.KPI) *float64 { return k.TurnoverGlobalPct }},
	{"turnover_voluntary_pct", "Turnover (voluntary)", func(k dataset.KPI) *float64 { return k.TurnoverVoluntaryPct }},
	{"conflict_index_pct", "Conflict index", func(k dataset.KPI) *float64 { return k.ConflictIndexPct }},
	{"agency_spend_pct_payroll", "Agency spend (% payroll)", func(k dataset.KPI) *float64 { return k.AgencySpendPctPayroll }},
}

func buildKPIs(snap *dataset.Snapshot, q Query, now time.Time) (content, error) {
	fields := []field[dataset.KPI]{
		textField("year", "Year", func(k dataset.KPI) string { return k.Year }),
	}
	for _, s := range kpiSeries {
		fields = append(fields, optionalField(s.key, s.label, s.get, formatPercent))
	}
	spec := tableSpec[dataset.KPI]{
		id:      repository.DatasetKPIs,
		title:   "Workforce KPIs by year",
		dataset: repository.DatasetKPIs,
		search:  "year",
		fields:  fields,
	}
	tbl, visible, err := spec.build(SectionKPIs, snap.KPIs, q, table.FileName(spec.dataset, now))
	if err != nil {
		return content{}, err
	}

	keys := make([]string, 0, len(kpiSeries))
	for _, s := range kpiSeries {
		keys = append(keys, s.key)
	}
	data := make([]chart.Datum, 0, len(visible))
	for _, k := range visible {
		d := chart.Datum{Name: k.Year, Series: map[string]float64{}}
		for _, s := range kpiSeries {
			if v := s.get(k); v != nil {
				d.Series[s.key] = *v
			}
		}
		data = append(data, d)
	}
	return content{
		tables: []tableResult{tbl},
		charts: []chartSpec{{id: "trends", kind: chart.Line, data: data, opts: chart.Options{Title: "KPI trends (%)", SeriesKeys: keys, AllowToggle: true}}},
	}, nil
}

func buildWages(snap *dataset.Snapshot, q Query, now time.Time) (content, error) {
	hourly := func(get func(dataset.WagePolicy) float64) func(dataset.WagePolicy) (float64, bool) {
		return func(w dataset.WagePolicy) (float64, bool) { return get(w), true }
	}
	spec := tableSpec[dataset.WagePolicy]{
		id:      repository.DatasetWagePolicy,
		title:   "Wage floors and Real Living Wage adoption",
		dataset: repository.DatasetWagePolicy,
		search:  "year",
		fields: []field[dataset.WagePolicy]{
			textField("year", "Year", func(w dataset.WagePolicy) string { return w.Year }),
			numberField("rlw", "Real Living Wage", hourly(func(w dataset.WagePolicy) float64 { return w.RLW }), formatHourly),
			numberField("llw", "London Living Wage", hourly(func(w dataset.WagePolicy) float64 { return w.LLW }), formatHourly),
			numberField("nlw", "National Living Wage", hourly(func(w dataset.WagePolicy) float64 { return w.NLW }), formatHourly),
			intField("rlw_accredited_orgs", "RLW accredited", func(w dataset.WagePolicy) int { return w.RLWAccreditedOrgs }),
			intField("paying_rlw_orgs", "Paying RLW", func(w dataset.WagePolicy) int { return w.PayingRLWOrgs }),
			intField("total_orgs", "Organisations", func(w dataset.WagePolicy) int { return w.TotalOrgs }),
		},
	}
	tbl, visible, err := spec.build(SectionWages, snap.WagePolicy, q, table.FileName(spec.dataset, now))
	if err != nil {
		return content{}, err
	}

	floors := make([]chart.Datum, 0, len(visible))
	adoption := make([]chart.Datum, 0, len(visible))
	for _, w := range visible {
		floors = append(floors, chart.Datum{Name: w.Year, Value: chart.Float(w.RLW), Series: map[string]float64{"rlw": w.RLW, "llw": w.LLW, "nlw": w.NLW}})
		adoption = append(adoption, chart.Datum{Name: w.Year, Series: map[string]float64{
			"accredited": float64(w.RLWAccreditedOrgs),
			"paying":     float64(w.PayingRLWOrgs),
		}})
	}
	return content{
		tables: []tableResult{tbl},
		charts: []chartSpec{
			{id: "floors", kind: chart.Line, data: floors, opts: chart.Options{Title: "Wage floors (£/hour)", SeriesKeys: []string{"rlw", "llw", "nlw"}}},
			{id: "rlw-adoption", kind: chart.Bar, data: adoption, opts: chart.Options{Title: "Real Living Wage adoption", SeriesKeys: []string{"accredited", "paying"}, AllowToggle: true}},
		},
	}, nil
}

func buildRates(snap *dataset.Snapshot, q Query, now time.Time) (content, error) {
	if q.Geography != "" && !strings.EqualFold(q.Geography, table.AllValues) {
		g, err := dataset.ParseGeography(q.Geography)
		if err != nil {
			return content{}, badQuery(err)
		}
		q.Geography = string(g)
	}

	spec := ratesSpec()
	spec.choices = map[string][]string{"category": snap.Categories()}
	tbl, visible, err := spec.build(SectionRates, snap.RoleRates, q, table.FileName(spec.dataset, now))
	if err != nil {
		return content{}, err
	}

	data := make([]chart.Datum, 0, len(visible))
	for _, r := range visible {
		if r.Median == nil {
			continue
		}
		name := r.Role
		if q.Geography == "" || strings.EqualFold(q.Geography, table.AllValues) {
			name = fmt.Sprintf("%s (%s)", r.Role, r.Geography)
		}
		data = append(data, chart.Datum{Name: name, Value: chart.Float(*r.Median)})
	}
	return content{
		tables: []tableResult{tbl},
		charts: []chartSpec{{id: "median-by-role", kind: chart.Bar, data: data, opts: chart.Options{Title: "Median salary by role", AllowToggle: true}}},
	}, nil
}

func ratesSpec() tableSpec[dataset.RoleRate] {
	return tableSpec[dataset.RoleRate]{
		id:      repository.DatasetRoleRates,
		title:   "Salary rates by role and geography",
		dataset: repository.DatasetRoleRates,
		search:  "role",
		filters: []string{"geography", "category"},
		fields: []field[dataset.RoleRate]{
			textField("role", "Role", func(r dataset.RoleRate) string { return r.Role }),
			textField("category", "Category", func(r dataset.RoleRate) string { return r.Category }),
			textField("geography", "Geography", func(r dataset.RoleRate) string { return string(r.Geography) }),
			numberField("sample_size", "Sample", func(r dataset.RoleRate) (float64, bool) {
				if r.SampleSize == nil {
					return 0, false
				}
				return float64(*r.SampleSize), true
			}, func(v float64) string { return formatCount(int(v)) }),
			optionalField("lq", "LQ", func(r dataset.RoleRate) *float64 { return r.LQ }, formatGBP),
			optionalField("median", "Median", func(r dataset.RoleRate) *float64 { return r.Median }, formatGBP),
			optionalField("uq", "UQ", func(r dataset.RoleRate) *float64 { return r.UQ }, formatGBP),
			optionalField("average", "Average", func(r dataset.RoleRate) *float64 { return r.Average }, formatGBP),
		},
	}
}
