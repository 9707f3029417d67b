package service

import (
	"github.com/okian/paybench/internal/domain/chart"
	"github.com/okian/paybench/internal/domain/filter"
)

// NavItem is one entry of the section navigation.
type NavItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

// Metric is a headline figure.
type Metric struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Display string  `json:"display"`
}

// Paragraph is narrative text.
type Paragraph struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ChartView is a rendered chart plus the links that rasterise it.
type ChartView struct {
	ID          string          `json:"id"`
	Rendering   chart.Rendering `json:"rendering"`
	DefaultKind chart.Kind      `json:"default_kind"`
	Kinds       []chart.Kind    `json:"kinds,omitempty"`
	PNGPath     string          `json:"png_path"`
	SVGPath     string          `json:"svg_path"`
	FileName    string          `json:"file_name"`
}

// OrgOption is an organisation a user can add to the filter.
type OrgOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterView is the region and organisation selection of a page.
type FilterView struct {
	State            string           `json:"state"`
	Selection        filter.Selection `json:"selection"`
	SelectedOrgs     []OrgOption      `json:"selected_orgs"`
	AvailableRegions []string         `json:"available_regions"`
	AvailableOrgs    []OrgOption      `json:"available_orgs"`
}

// Page is the immutable view model of one section.
type Page struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	SurveyName string      `json:"survey_name"`
	Version    string      `json:"version"`
	Published  string      `json:"published"`
	Narrative  []Paragraph `json:"narrative,omitempty"`
	Metrics    []Metric    `json:"metrics,omitempty"`
	Tables     []Table     `json:"tables,omitempty"`
	Charts     []ChartView `json:"charts,omitempty"`
	Filter     *FilterView `json:"filter,omitempty"`
	Nav        []NavItem   `json:"nav"`
}

// Table returns the table with the given id.
func (p Page) Table(id string) (Table, bool) {
	for _, t := range p.Tables {
		if t.ID == id {
			return t, true
		}
	}
	return Table{}, false
}

// Chart returns the chart with the given id.
func (p Page) Chart(id string) (ChartView, bool) {
	for _, c := range p.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return ChartView{}, false
}
