package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/paybench/pkg/metrics"
)

// DefaultPalette is used when an adapter is built without WithPalette.
var DefaultPalette = []string{
	"#1f4e79", "#2e8b57", "#c0504d", "#f2a900",
	"#7a5195", "#3fa7d6", "#8c564b", "#5b6770",
}

// Default raster size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 320
)

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithPalette sets the ordered colour tokens series and slices cycle through.
func WithPalette(palette []string) AdapterOption {
	return func(a *Adapter) {
		if len(palette) > 0 {
			a.palette = normalisePalette(palette)
		}
	}
}

// WithSize sets the raster size used when Options leave it unset.
func WithSize(width, height int) AdapterOption {
	return func(a *Adapter) {
		if width > 0 {
			a.width = width
		}
		if height > 0 {
			a.height = height
		}
	}
}

// WithClock overrides the date used in exported file names.
func WithClock(now func() time.Time) AdapterOption {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// Adapter renders one dataset at a time and keeps it for toggling and
// export. It is not safe for concurrent use.
type Adapter struct {
	palette []string
	width   int
	height  int
	now     func() time.Time

	data    []Datum
	opts    Options
	current *Rendering
}

// NewAdapter builds an adapter with the default palette and size.
func NewAdapter(opts ...AdapterOption) *Adapter {
	a := &Adapter{
		palette: normalisePalette(DefaultPalette),
		width:   DefaultWidth,
		height:  DefaultHeight,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Color returns the palette entry for series index i.
func (a *Adapter) Color(i int) string {
	return a.palette[i%len(a.palette)]
}

// Render encodes data as kind. Empty data is not an error: the rendering is
// marked Empty and rasterises to a "No data" placeholder.
func (a *Adapter) Render(data []Datum, kind Kind, opts Options) (Rendering, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Rendering{}, err
	}
	a.data = append([]Datum(nil), data...)
	a.opts = opts
	r := a.build(kind)
	a.current = &r
	metrics.RecordChartRender(string(kind))
	return r, nil
}

// ToggleKind re-renders the retained data under another encoding.
func (a *Adapter) ToggleKind(kind Kind) (Rendering, error) {
	if a.current == nil {
		return Rendering{}, ErrNotRendered
	}
	if !a.opts.AllowToggle {
		return Rendering{}, ErrToggleDisabled
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return Rendering{}, err
	}
	r := a.build(kind)
	a.current = &r
	metrics.RecordChartRender(string(kind))
	return r, nil
}

// Current returns the last rendering.
func (a *Adapter) Current() (Rendering, bool) {
	if a.current == nil {
		return Rendering{}, false
	}
	return *a.current, true
}

func (a *Adapter) build(kind Kind) Rendering {
	o := a.opts
	r := Rendering{
		Kind:        kind,
		Title:       o.Title,
		AxisLabel:   o.axisKey(),
		Width:       o.Width,
		Height:      o.Height,
		Categories:  make([]string, len(a.data)),
		Empty:       len(a.data) == 0,
		AllowToggle: o.AllowToggle,
	}
	if r.Width <= 0 {
		r.Width = a.width
	}
	if r.Height <= 0 {
		r.Height = a.height
	}

	axis := o.axisKey()
	for i, d := range a.data {
		r.Categories[i] = categoryLabel(d, axis)
	}
	if r.Empty {
		return r
	}

	if kind == Pie {
		r.ValueKey = o.pieKey()
		r.Slices = a.slices(r.ValueKey, r.Categories)
		return r
	}

	for si, key := range o.seriesKeys() {
		sv := SeriesView{
			Key:     key,
			Color:   a.Color(si),
			Values:  make([]float64, len(a.data)),
			Present: make([]bool, len(a.data)),
		}
		for i, d := range a.data {
			sv.Values[i], sv.Present[i] = d.Get(key)
		}
		r.Series = append(r.Series, sv)
	}
	return r
}

// slices skips categories without a value for key; an absent value is
// never drawn as a zero slice.
func (a *Adapter) slices(key string, names []string) []Slice {
	total := 0.0
	for _, d := range a.data {
		if v, ok := d.Get(key); ok && v > 0 {
			total += v
		}
	}
	out := make([]Slice, 0, len(a.data))
	for i, d := range a.data {
		v, ok := d.Get(key)
		if !ok {
			continue
		}
		s := Slice{Name: names[i], Value: v, Color: a.Color(i)}
		if total > 0 && v > 0 {
			s.Share = v / total
		}
		s.Percent = int(math.Round(s.Share * 100))
		s.Label = fmt.Sprintf("%s %d%%", s.Name, s.Percent)
		out = append(out, s)
	}
	return out
}

func categoryLabel(d Datum, axis string) string {
	if axis == NameKey {
		return d.Name
	}
	if v, ok := d.Get(axis); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return d.Name
}

func normalisePalette(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !strings.HasPrefix(c, "#") {
			c = "#" + c
		}
		out = append(out, strings.ToLower(c))
	}
	if len(out) == 0 {
		return normalisePalette(DefaultPalette)
	}
	return out
}
