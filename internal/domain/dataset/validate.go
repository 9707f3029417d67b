package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the record invariants that the rest of the dashboard
// relies on. All violations are reported together.
func (s *Snapshot) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSnapshot}, args...)...))
	}

	if strings.TrimSpace(s.Version) == "" {
		add("version must not be empty")
	}

	type rateKey struct {
		role string
		geo  Geography
	}
	seenRates := make(map[rateKey]struct{}, len(s.RoleRates))
	for i, r := range s.RoleRates {
		if strings.TrimSpace(r.Role) == "" {
			add("role_rates[%d]: role must not be empty", i)
		}
		k := rateKey{role: r.Role, geo: r.Geography}
		if _, dup := seenRates[k]; dup {
			add("role_rates[%d]: duplicate %q / %q", i, r.Role, r.Geography)
		}
		seenRates[k] = struct{}{}

		present := 0
		for _, q := range []*float64{r.LQ, r.Median, r.UQ} {
			if q != nil {
				present++
			}
		}
		switch {
		case present != 0 && present != 3:
			add("role_rates[%d] %q / %q: quartiles must be all present or all absent", i, r.Role, r.Geography)
		case present == 3 && (*r.LQ > *r.Median || *r.Median > *r.UQ):
			add("role_rates[%d] %q / %q: expected lq <= median <= uq", i, r.Role, r.Geography)
		}
		if r.SampleSize != nil && *r.SampleSize < 0 {
			add("role_rates[%d]: negative sample size", i)
		}
	}

	seenOrgs := make(map[string]struct{}, len(s.Organisations))
	for i, o := range s.Organisations {
		if o.ID == "" {
			add("organisations[%d]: id must not be empty", i)
		}
		if _, dup := seenOrgs[o.ID]; dup {
			add("organisations[%d]: duplicate id %q", i, o.ID)
		}
		seenOrgs[o.ID] = struct{}{}
		if o.Headcount <= 0 {
			add("organisation %q: headcount must be positive", o.ID)
		}
		if o.TurnoverGBPm <= 0 {
			add("organisation %q: turnover must be positive", o.ID)
		}
		if w := o.WorkingWeek; w.Hours == nil && w.Range[0] > w.Range[1] {
			add("organisation %q: working week range is inverted", o.ID)
		}
	}

	seenYears := make(map[string]struct{}, len(s.KPIs))
	for i, k := range s.KPIs {
		if _, dup := seenYears[k.Year]; dup {
			add("kpis[%d]: duplicate year %q", i, k.Year)
		}
		seenYears[k.Year] = struct{}{}
	}

	return errors.Join(errs...)
}

// OrgIDs returns organisation ids in snapshot order.
func (s *Snapshot) OrgIDs() []string {
	ids := make([]string, len(s.Organisations))
	for i, o := range s.Organisations {
		ids[i] = o.ID
	}
	return ids
}

// Organisation looks up an organisation by id.
func (s *Snapshot) Organisation(id string) (Organisation, bool) {
	for _, o := range s.Organisations {
		if o.ID == id {
			return o, true
		}
	}
	return Organisation{}, false
}

// Categories returns the distinct role categories in first-seen order.
func (s *Snapshot) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.RoleRates {
		if _, ok := seen[r.Category]; ok || r.Category == "" {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}
