package chart

import (
	"fmt"
	"html"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/okian/paybench/pkg/metrics"
)

// Rasterize writes the current rendering as PNG or SVG. Failures are
// wrapped in ErrRasterize and leave the adapter usable.
func (a *Adapter) Rasterize(w io.Writer, format Format) error {
	if a.current == nil {
		return ErrNotRendered
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}

	start := time.Now()
	err := a.rasterize(w, format, *a.current)
	metrics.RecordChartRaster(string(format), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	return nil
}

// ExportImage writes the current rendering as PNG and returns the file name
// the image should be saved under.
func (a *Adapter) ExportImage(w io.Writer) (string, error) {
	if a.current == nil {
		return "", ErrNotRendered
	}
	if err := a.Rasterize(w, PNG); err != nil {
		return "", err
	}
	return ImageFileName(a.current.Title, a.now()), nil
}

// ImageFileName is "chart-<slug(title)>-<YYYY-MM-DD>.png".
func ImageFileName(title string, t time.Time) string {
	slug := Slug(title)
	if slug == "" {
		slug = "untitled"
	}
	return fmt.Sprintf("chart-%s-%s.png", slug, t.Format(time.DateOnly))
}

func (a *Adapter) rasterize(w io.Writer, format Format, r Rendering) error {
	if r.Empty || !hasDrawableValues(r) {
		if format == SVG {
			return placeholderSVG(w, r)
		}
		return placeholderPNG(w, r)
	}

	provider := gochart.PNG
	if format == SVG {
		provider = gochart.SVG
	}

	switch r.Kind {
	case Pie:
		pc := pieChart(r)
		return pc.Render(provider, w)
	case Line:
		lc := lineChart(r)
		if len(lc.Series) > 1 {
			lc.Elements = []gochart.Renderable{gochart.Legend(&lc)}
		}
		return lc.Render(provider, w)
	default:
		bc := barChart(r)
		return bc.Render(provider, w)
	}
}

func hasDrawableValues(r Rendering) bool {
	if r.Kind == Pie {
		for _, s := range r.Slices {
			if s.Value > 0 {
				return true
			}
		}
		return false
	}
	for _, s := range r.Series {
		for _, p := range s.Present {
			if p {
				return true
			}
		}
	}
	return false
}

func hexColor(c string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
}

func titleStyle() gochart.Style {
	return gochart.Style{FontSize: 12, Padding: gochart.Box{Top: 8}}
}

// valueRange spans zero and the largest present value with some headroom.
func valueRange(r Rendering) *gochart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, s := range r.Series {
		for i, v := range s.Values {
			if !s.Present[i] {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi * 1.1}
}

// barChart interleaves series so each category is a group of adjacent bars.
// Only the first bar of a group carries the category label.
func barChart(r Rendering) gochart.BarChart {
	n := len(r.Categories) * len(r.Series)
	bars := make([]gochart.Value, 0, n)
	for i, cat := range r.Categories {
		for si, s := range r.Series {
			label := ""
			if si == 0 {
				label = cat
			}
			v := 0.0
			if s.Present[i] {
				v = s.Values[i]
			}
			col := hexColor(s.Color)
			bars = append(bars, gochart.Value{
				Label: label,
				Value: v,
				Style: gochart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
			})
		}
	}

	barWidth := r.Width / (n*3/2 + 1)
	barWidth = max(4, min(barWidth, 60))
	return gochart.BarChart{
		Title:      r.Title,
		TitleStyle: titleStyle(),
		Width:      r.Width,
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: max(2, barWidth/3),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		YAxis: gochart.YAxis{
			Range:          valueRange(r),
			ValueFormatter: compactFormatter,
		},
		Bars: bars,
	}
}

// lineChart plots categories at x = 0..n-1 with the category names as ticks.
// Unlabelled ticks half a step beyond each end keep the x range non-zero when
// there is a single category; go-chart derives the range from the ticks.
func lineChart(r Rendering) gochart.Chart {
	n := len(r.Categories)
	ticks := make([]gochart.Tick, 0, n+2)
	ticks = append(ticks, gochart.Tick{Value: -0.5})
	for i, c := range r.Categories {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: c})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})

	series := make([]gochart.Series, 0, len(r.Series))
	for _, s := range r.Series {
		var xs, ys []float64
		for i, v := range s.Values {
			if s.Present[i] {
				xs = append(xs, float64(i))
				ys = append(ys, v)
			}
		}
		if len(xs) == 0 {
			continue
		}
		col := hexColor(s.Color)
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Key,
			XValues: xs,
			YValues: ys,
			Style:   gochart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3},
		})
	}

	return gochart.Chart{
		Title:      r.Title,
		TitleStyle: titleStyle(),
		Width:      r.Width,
		Height:     r.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  r.AxisLabel,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
		},
		YAxis: gochart.YAxis{
			Range:          valueRange(r),
			ValueFormatter: compactFormatter,
		},
		Series: series,
	}
}

func pieChart(r Rendering) gochart.PieChart {
	values := make([]gochart.Value, 0, len(r.Slices))
	for _, s := range r.Slices {
		if s.Value <= 0 {
			continue
		}
		col := hexColor(s.Color)
		values = append(values, gochart.Value{
			Label: s.Label,
			Value: s.Value,
			Style: gochart.Style{FillColor: col, StrokeColor: drawing.ColorWhite, StrokeWidth: 1},
		})
	}
	return gochart.PieChart{
		Title:      r.Title,
		TitleStyle: titleStyle(),
		Width:      r.Width,
		Height:     r.Height,
		Values:     values,
	}
}

func compactFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	switch a := math.Abs(f); {
	case a >= 1_000_000:
		return fmt.Sprintf("%.1fm", f/1_000_000)
	case a >= 10_000:
		return fmt.Sprintf("%.0fk", f/1_000)
	case a >= 100:
		return fmt.Sprintf("%.0f", f)
	default:
		return fmt.Sprintf("%.1f", f)
	}
}

const noDataText = "No data"

func placeholderPNG(w io.Writer, r Rendering) error {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 250, G: 250, B: 250, A: 255}), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ink := image.NewUniform(color.RGBA{R: 90, G: 103, B: 112, A: 255})
	dr := &font.Drawer{Dst: img, Src: ink, Face: face}

	centre := func(text string, y int) {
		tw := dr.MeasureString(text).Ceil()
		dr.Dot = fixed.Point26_6{X: fixed.I((r.Width - tw) / 2), Y: fixed.I(y)}
		dr.DrawString(text)
	}
	if r.Title != "" {
		centre(r.Title, 24)
	}
	centre(noDataText, r.Height/2)
	return png.Encode(w, img)
}

func placeholderSVG(w io.Writer, r Rendering) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#fafafa"/>`+
			`<text x="50%%" y="24" text-anchor="middle" font-family="sans-serif" font-size="12">%s</text>`+
			`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="13" fill="#5a6770">%s</text>`+
			`</svg>`,
		r.Width, r.Height, r.Width, r.Height, html.EscapeString(r.Title), noDataText)
	return err
}
