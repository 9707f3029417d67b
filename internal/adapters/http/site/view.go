package site

import (
	service "github.com/okian/paybench/internal/app"
	"github.com/okian/paybench/internal/domain/chart"
)

type errorView struct {
	Status  int
	Title   string
	Message string
}

type hiddenField struct {
	Name  string
	Value string
}

// pageView adds link builders that carry the current query forward.
type pageView struct {
	service.Page
	Query service.Query
}

func (v pageView) href(q service.Query) string {
	path := "/sections/" + v.ID
	if enc := q.Values().Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// SortHref applies the header's next sort state.
func (v pageView) SortHref(h service.Header) string {
	q := v.Query
	q.Sort, q.Dir = h.Key, h.NextSort
	if h.NextSort == service.SortNone {
		q.Sort, q.Dir = service.SortNone, ""
	}
	return v.href(q)
}

// KindHref switches one chart to kind.
func (v pageView) KindHref(chartID string, kind chart.Kind) string {
	q := v.Query
	q.Kinds = make(map[string]chart.Kind, len(v.Query.Kinds)+1)
	for id, k := range v.Query.Kinds {
		q.Kinds[id] = k
	}
	q.Kinds[chartID] = kind
	return v.href(q)
}

// RegionHref adds or removes a region from the selection.
func (v pageView) RegionHref(region string, add bool) string {
	q := v.Query
	q.Regions = toggle(v.Query.Regions, region, add)
	return v.href(q)
}

// OrgHref adds or removes an organisation from the selection.
func (v pageView) OrgHref(id string, add bool) string {
	q := v.Query
	q.OrgIDs = toggle(v.Query.OrgIDs, id, add)
	return v.href(q)
}

// ResetHref clears the region and organisation selection.
func (v pageView) ResetHref() string {
	q := v.Query
	q.Regions, q.OrgIDs = nil, nil
	return v.href(q)
}

// CSVHref is the table's download link under the current query.
func (v pageView) CSVHref(t service.Table) string {
	if enc := v.Query.Values().Encode(); enc != "" {
		return t.CSVPath + "?" + enc
	}
	return t.CSVPath
}

// Hidden lists the query state a table form must carry besides its own
// search and filter inputs.
func (v pageView) Hidden() []hiddenField {
	var out []hiddenField
	for _, r := range v.Query.Regions {
		out = append(out, hiddenField{"region", r})
	}
	for _, id := range v.Query.OrgIDs {
		out = append(out, hiddenField{"org", id})
	}
	if v.Query.Sort != "" {
		out = append(out, hiddenField{"sort", v.Query.Sort})
	}
	if v.Query.Dir != "" {
		out = append(out, hiddenField{"dir", v.Query.Dir})
	}
	for id, k := range v.Query.Kinds {
		out = append(out, hiddenField{"kind", id + ":" + string(k)})
	}
	return out
}

func toggle(in []string, v string, add bool) []string {
	out := make([]string, 0, len(in)+1)
	for _, s := range in {
		if s != v {
			out = append(out, s)
		}
	}
	if add {
		out = append(out, v)
	}
	return out
}
