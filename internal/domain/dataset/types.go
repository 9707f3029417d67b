// Package dataset holds the typed, immutable records of the pay survey
// snapshot and the enums used to segment them.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Geography is the dimension role-pay rows are segmented over.
type Geography string

// Geographies in display order.
const (
	GeoTotal               Geography = "Total"
	GeoInsideLondon        Geography = "Inside London"
	GeoOutsideLondon       Geography = "Outside London"
	GeoWiderMarketLondon   Geography = "Wider Market London"
	GeoWiderMarketNational Geography = "Wider Market National"
)

// Geographies lists every geography in display order.
func Geographies() []Geography {
	return []Geography{GeoTotal, GeoInsideLondon, GeoOutsideLondon, GeoWiderMarketLondon, GeoWiderMarketNational}
}

// ParseGeography accepts the display label or the compact key
// ("InsideLondon"), case-insensitively.
func ParseGeography(s string) (Geography, error) {
	key := compact(s)
	for _, g := range Geographies() {
		if compact(string(g)) == key {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGeography, s)
}

// UnmarshalYAML validates the geography while decoding the snapshot.
func (g *Geography) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseGeography(node.Value)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Region is where an organisation operates.
type Region string

// Regions.
const (
	RegionLondon        Region = "London"
	RegionOutsideLondon Region = "Outside London"
	RegionBoth          Region = "Both"
)

// Regions lists every region in display order.
func Regions() []Region {
	return []Region{RegionLondon, RegionOutsideLondon, RegionBoth}
}

// ParseRegion accepts the display label or the compact key, case-insensitively.
func ParseRegion(s string) (Region, error) {
	key := compact(s)
	for _, r := range Regions() {
		if compact(string(r)) == key {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}

// UnmarshalYAML validates the region while decoding the snapshot.
func (r *Region) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseRegion(node.Value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// RoleRate is one role x geography salary distribution summary.
// Quartiles are nil when the sample was too small to publish.
type RoleRate struct {
	Role       string    `yaml:"role" json:"role"`
	Category   string    `yaml:"category" json:"category"`
	Geography  Geography `yaml:"geography" json:"geography"`
	SampleSize *int      `yaml:"sample_size,omitempty" json:"sample_size,omitempty"`
	LQ         *float64  `yaml:"lq,omitempty" json:"lq,omitempty"`
	Median     *float64  `yaml:"median,omitempty" json:"median,omitempty"`
	UQ         *float64  `yaml:"uq,omitempty" json:"uq,omitempty"`
	Average    *float64  `yaml:"average,omitempty" json:"average,omitempty"`
}

// HasQuartiles reports whether LQ, Median and UQ are all present.
func (r RoleRate) HasQuartiles() bool {
	return r.LQ != nil && r.Median != nil && r.UQ != nil
}

// WorkingWeek is either a fixed number of hours or a noted range.
type WorkingWeek struct {
	Hours *float64   `yaml:"hours,omitempty" json:"hours,omitempty"`
	Note  string     `yaml:"note,omitempty" json:"note,omitempty"`
	Range [2]float64 `yaml:"range,omitempty" json:"range,omitempty"`
}

// UnmarshalYAML accepts a bare number or a mapping.
func (w *WorkingWeek) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		h, err := strconv.ParseFloat(node.Value, 64)
		if err != nil {
			return fmt.Errorf("working week %q: %w", node.Value, err)
		}
		*w = WorkingWeek{Hours: &h}
		return nil
	}
	type plain WorkingWeek
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*w = WorkingWeek(p)
	return nil
}

// IsRange reports whether the week is a noted range rather than fixed hours.
func (w WorkingWeek) IsRange() bool { return w.Hours == nil }

// String renders "37" or "35–37.5 (varies by contract)".
func (w WorkingWeek) String() string {
	if w.Hours != nil {
		return strconv.FormatFloat(*w.Hours, 'f', -1, 64)
	}
	s := strconv.FormatFloat(w.Range[0], 'f', -1, 64) + "–" + strconv.FormatFloat(w.Range[1], 'f', -1, 64)
	if w.Note != "" {
		s += " (" + w.Note + ")"
	}
	return s
}

// Organisation is a survey participant.
type Organisation struct {
	ID           string      `yaml:"id" json:"id"`
	Name         string      `yaml:"name" json:"name"`
	Region       Region      `yaml:"region" json:"region"`
	Headcount    int         `yaml:"headcount" json:"headcount"`
	TurnoverGBPm float64     `yaml:"turnover_gbp_m" json:"turnover_gbp_m"`
	WorkingWeek  WorkingWeek `yaml:"working_week" json:"working_week"`
}

// KPI is one reporting year of workforce indicators. All fields are optional.
type KPI struct {
	Year                  string   `yaml:"year" json:"year"`
	SicknessLTRPct        *float64 `yaml:"sickness_ltr_pct,omitempty" json:"sickness_ltr_pct,omitempty"`
	TurnoverGlobalPct     *float64 `yaml:"turnover_global_pct,omitempty" json:"turnover_global_pct,omitempty"`
	TurnoverVoluntaryPct  *float64 `yaml:"turnover_voluntary_pct,omitempty" json:"turnover_voluntary_pct,omitempty"`
	ConflictIndexPct      *float64 `yaml:"conflict_index_pct,omitempty" json:"conflict_index_pct,omitempty"`
	AgencySpendPctPayroll *float64 `yaml:"agency_spend_pct_payroll,omitempty" json:"agency_spend_pct_payroll,omitempty"`
}

// Benefit is a non-pay benefit and the share of organisations offering it.
type Benefit struct {
	Name          string  `yaml:"name" json:"name"`
	Category      string  `yaml:"category" json:"category"`
	PrevalencePct float64 `yaml:"prevalence_pct" json:"prevalence_pct"`
	Note          string  `yaml:"note,omitempty" json:"note,omitempty"`
}

// Framework is a pay framework type and the share of organisations using it.
type Framework struct {
	Name        string  `yaml:"name" json:"name"`
	SharePct    float64 `yaml:"share_pct" json:"share_pct"`
	Description string  `yaml:"description" json:"description"`
}

// WagePolicy holds one year of statutory and voluntary wage floors.
type WagePolicy struct {
	Year              string  `yaml:"year" json:"year"`
	RLW               float64 `yaml:"rlw" json:"rlw"`
	LLW               float64 `yaml:"llw" json:"llw"`
	NLW               float64 `yaml:"nlw" json:"nlw"`
	RLWAccreditedOrgs int     `yaml:"rlw_accredited_orgs" json:"rlw_accredited_orgs"`
	PayingRLWOrgs     int     `yaml:"paying_rlw_orgs" json:"paying_rlw_orgs"`
	TotalOrgs         int     `yaml:"total_orgs" json:"total_orgs"`
}

// SummaryMetric is a headline figure on the overview.
type SummaryMetric struct {
	Key   string  `yaml:"key" json:"key"`
	Label string  `yaml:"label" json:"label"`
	Value float64 `yaml:"value" json:"value"`
	Unit  string  `yaml:"unit" json:"unit"`
}

// Reflection is a narrative paragraph for the reflections section.
type Reflection struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// Snapshot is the full, versioned survey payload.
type Snapshot struct {
	Version       string          `yaml:"version" json:"version"`
	Published     time.Time       `yaml:"published" json:"published"`
	SurveyName    string          `yaml:"survey_name" json:"survey_name"`
	Summary       []SummaryMetric `yaml:"summary" json:"summary"`
	Reflections   []Reflection    `yaml:"reflections" json:"reflections"`
	Organisations []Organisation  `yaml:"organisations" json:"organisations"`
	RoleRates     []RoleRate      `yaml:"role_rates" json:"role_rates"`
	KPIs          []KPI           `yaml:"kpis" json:"kpis"`
	Benefits      []Benefit       `yaml:"benefits" json:"benefits"`
	Frameworks    []Framework     `yaml:"frameworks" json:"frameworks"`
	WagePolicy    []WagePolicy    `yaml:"wage_policy" json:"wage_policy"`
}
