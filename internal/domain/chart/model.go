// Package chart turns {name, value, ...series} rows into bar, line or pie
// renderings and rasterises them to PNG or SVG.
package chart

import (
	"fmt"
	"strings"
)

// Kind is a visual encoding.
type Kind string

// Chart kinds.
const (
	Bar  Kind = "bar"
	Line Kind = "line"
	Pie  Kind = "pie"
)

// Kinds lists the supported encodings.
func Kinds() []Kind { return []Kind{Bar, Line, Pie} }

// ParseKind accepts bar, line or pie in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Bar, Line, Pie:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Format is a raster output format.
type Format string

// Image formats.
const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts png or svg.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case PNG, SVG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Well-known keys understood by Datum.Get.
const (
	NameKey  = "name"
	ValueKey = "value"
)

// Datum is one category. Value is nil when the datum only carries Series;
// the adapter only reads the keys a caller asks for.
type Datum struct {
	Name   string             `json:"name"`
	Value  *float64           `json:"value,omitempty"`
	Series map[string]float64 `json:"series,omitempty"`
}

// Float returns a pointer to v for Datum.Value.
func Float(v float64) *float64 { return &v }

// Get resolves "value" or a series key. The boolean is false when the datum
// has no such value.
func (d Datum) Get(key string) (float64, bool) {
	if key == "" || key == ValueKey {
		if d.Value == nil {
			return 0, false
		}
		return *d.Value, true
	}
	v, ok := d.Series[key]
	return v, ok
}

// Options control a render. AxisKey labels the category axis and defaults
// to "name". ValueKey is the single series plotted when SeriesKeys is empty;
// it defaults to "value". Pies slice ValueKey when it is set, otherwise the
// first of SeriesKeys. AllowToggle permits ToggleKind.
type Options struct {
	Title       string
	AxisKey     string
	ValueKey    string
	SeriesKeys  []string
	Width       int
	Height      int
	AllowToggle bool
}

func (o Options) valueKey() string {
	if o.ValueKey == "" {
		return ValueKey
	}
	return o.ValueKey
}

func (o Options) axisKey() string {
	if o.AxisKey == "" {
		return NameKey
	}
	return o.AxisKey
}

func (o Options) pieKey() string {
	if o.ValueKey == "" && len(o.SeriesKeys) > 0 {
		return o.SeriesKeys[0]
	}
	return o.valueKey()
}

func (o Options) seriesKeys() []string {
	if len(o.SeriesKeys) == 0 {
		return []string{o.valueKey()}
	}
	return o.SeriesKeys
}

// SeriesView is one plotted series. Present[i] is false when category i has
// no value for this series.
type SeriesView struct {
	Key     string    `json:"key"`
	Color   string    `json:"color"`
	Values  []float64 `json:"values"`
	Present []bool    `json:"present"`
}

// Slice is one pie segment. Share keeps full precision; Percent and Label
// are rounded for display only.
type Slice struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Share   float64 `json:"share"`
	Percent int     `json:"percent"`
	Label   string  `json:"label"`
	Color   string  `json:"color"`
}

// Rendering is the immutable result of Render.
type Rendering struct {
	Kind        Kind         `json:"kind"`
	Title       string       `json:"title"`
	AxisLabel   string       `json:"axis_label"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Categories  []string     `json:"categories"`
	Series      []SeriesView `json:"series,omitempty"`
	ValueKey    string       `json:"value_key,omitempty"`
	Slices      []Slice      `json:"slices,omitempty"`
	Empty       bool         `json:"empty"`
	AllowToggle bool         `json:"allow_toggle"`
}
