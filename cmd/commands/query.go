package commands

import (
	"net/url"

	"github.com/spf13/cobra"

	service "github.com/okian/paybench/internal/app"
)

// queryFlags mirrors the dashboard's URL query on the command line.
type queryFlags struct {
	regions   []string
	orgs      []string
	search    string
	geography string
	category  string
	sort      string
	dir       string
	kinds     []string
}

func (f *queryFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.regions, "region", nil, "restrict the overview to regions (repeatable)")
	fl.StringSliceVar(&f.orgs, "org", nil, "restrict the overview to organisation ids (repeatable)")
	fl.StringVar(&f.search, "search", "", "case-insensitive substring search")
	fl.StringVar(&f.geography, "geography", "", "geography filter for salary rates, or \"all\"")
	fl.StringVar(&f.category, "category", "", "category filter")
	fl.StringVar(&f.sort, "sort", "", "sort column key, or \"none\" to clear the default sort")
	fl.StringVar(&f.dir, "dir", "", "sort direction: asc or desc")
	fl.StringArrayVar(&f.kinds, "kind", nil, "chart kind override as <chart>:<kind> (repeatable)")
}

// query validates the flags the same way the HTTP handlers validate a URL.
func (f *queryFlags) query() (service.Query, error) {
	v := url.Values{}
	v["region"] = f.regions
	v["org"] = f.orgs
	v["kind"] = f.kinds
	for k, val := range map[string]string{
		"search":    f.search,
		"geography": f.geography,
		"category":  f.category,
		"sort":      f.sort,
		"dir":       f.dir,
	} {
		if val != "" {
			v.Set(k, val)
		}
	}
	return service.QueryFromValues(v)
}
