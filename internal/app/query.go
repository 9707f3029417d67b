package service

import (
	"net/url"
	"strings"

	"github.com/okian/paybench/internal/domain/chart"
)

// SortNone as a sort column explicitly clears a section's default sort.
const SortNone = "none"

// Query is the per-request view state. Nothing in it outlives the request.
// Kinds overrides the encoding of individual charts, keyed by chart id.
type Query struct {
	Regions   []string
	OrgIDs    []string
	Search    string
	Geography string
	Category  string
	Sort      string
	Dir       string
	Kinds     map[string]chart.Kind
}

func (q Query) filterValue(column string) string {
	switch column {
	case "geography":
		return q.Geography
	case "category":
		return q.Category
	}
	return ""
}

// Values encodes the query the way QueryFromValues reads it.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, r := range q.Regions {
		v.Add("region", r)
	}
	for _, id := range q.OrgIDs {
		v.Add("org", id)
	}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("search", q.Search)
	set("geography", q.Geography)
	set("category", q.Category)
	set("sort", q.Sort)
	set("dir", q.Dir)
	for id, k := range q.Kinds {
		v.Add("kind", id+":"+string(k))
	}
	return v
}

// QueryFromValues reads region, org, search, geography, category, sort, dir
// and kind=<chart>:<kind> parameters. Repeated and comma-separated values are
// both accepted for region and org.
func QueryFromValues(v url.Values) (Query, error) {
	q := Query{
		Regions:   splitList(v["region"]),
		OrgIDs:    splitList(v["org"]),
		Search:    v.Get("search"),
		Geography: strings.TrimSpace(v.Get("geography")),
		Category:  strings.TrimSpace(v.Get("category")),
		Sort:      strings.TrimSpace(v.Get("sort")),
		Dir:       strings.TrimSpace(v.Get("dir")),
	}
	for _, raw := range v["kind"] {
		id, kind, ok := strings.Cut(raw, ":")
		if !ok {
			continue
		}
		k, err := chart.ParseKind(kind)
		if err != nil {
			return Query{}, badQuery(err)
		}
		if q.Kinds == nil {
			q.Kinds = map[string]chart.Kind{}
		}
		q.Kinds[strings.TrimSpace(id)] = k
	}
	return q, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
