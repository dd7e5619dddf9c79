// Package chart renders a metric series as an SVG line chart whose colour
// follows the risk level the line is passing through.
//
// The line is not split at threshold crossings. The whole series is drawn once
// per level region, each copy clipped to that region's horizontal band, so the
// colour changes exactly at the threshold with no resampling of the data.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
	"github.com/couchcryptid/covid-risk-levels/internal/zone"
)

// ErrNoData is returned when a series has no point with a usable value.
var ErrNoData = errors.New("series has no data")

const (
	// futureWindow extends the x-axis past today to leave room for region labels.
	futureWindow = 14 * 24 * time.Hour

	gridColor = "#e0e0e0"
	axisColor = "#757575"
)

// Options controls the chart's pixel geometry.
type Options struct {
	Width        int
	Height       int
	MarginTop    int
	MarginBottom int
	MarginLeft   int
	MarginRight  int
	// IDPrefix namespaces clip-path ids so several charts can share a page.
	IDPrefix string
}

// DefaultOptions returns a 600x400 chart with room for axis labels.
func DefaultOptions() Options {
	return Options{
		Width:        600,
		Height:       400,
		MarginTop:    5,
		MarginBottom: 40,
		MarginLeft:   40,
		MarginRight:  5,
		IDPrefix:     "chart",
	}
}

// Renderer draws charts. It is safe for concurrent use.
type Renderer struct {
	clock clockwork.Clock
}

// NewRenderer creates a Renderer. The clock fixes the right edge of the time
// axis; pass nil for the real clock.
func NewRenderer(clock clockwork.Clock) *Renderer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Renderer{clock: clock}
}

// frame is the computed geometry of one chart.
type frame struct {
	opts        Options
	chartWidth  float64
	chartHeight float64
	x           timeScale
	y           linearScale
	regions     []zone.Region
	ticks       []float64
	xs, ys      []float64
	last        domain.Point
	lastLevel   level.LevelInfo
}

func (r *Renderer) layout(def level.Definition, points []domain.Point, opts Options) (frame, error) {
	chartWidth := float64(opts.Width - opts.MarginLeft - opts.MarginRight)
	chartHeight := float64(opts.Height - opts.MarginTop - opts.MarginBottom)
	if chartWidth <= 0 || chartHeight <= 0 {
		return frame{}, fmt.Errorf("chart area %gx%g is empty", chartWidth, chartHeight)
	}

	data := domain.ValidPoints(points)
	if len(data) == 0 {
		return frame{}, ErrNoData
	}

	minDate, _, _ := domain.DateRange(data)
	maxDate := r.clock.Now().UTC().Add(futureWindow)

	b := ComputeBands(def, data)
	f := frame{
		opts:        opts,
		chartWidth:  chartWidth,
		chartHeight: chartHeight,
		x:           timeScale{start: minDate, end: maxDate, r0: 0, r1: chartWidth},
		y:           linearScale{d0: 0, d1: b.YMax, r0: chartHeight, r1: 0},
		regions:     b.Regions,
		ticks:       b.Ticks,
		xs:          make([]float64, len(data)),
		ys:          make([]float64, len(data)),
	}
	for i, p := range data {
		f.xs[i] = f.x.at(p.X)
		f.ys[i] = f.y.at(*p.Y)
	}
	f.last, _ = domain.Last(data)
	f.lastLevel = level.Classify(*f.last.Y, def.Levels)
	return f, nil
}

// Bands is the vertical decomposition of a chart.
type Bands struct {
	Regions []zone.Region `json:"regions"`
	Ticks   []float64     `json:"ticks"`
	YMax    float64       `json:"y_max"`
}

// ComputeBands returns the bands a chart of points would show. The y-axis
// runs from zero to the data maximum capped at the metric's CapY. Regions
// follow the uncapped maximum; the plot clip hides whatever lies above the
// axis. An all-zero or empty series gets a unit axis.
func ComputeBands(def level.Definition, points []domain.Point) Bands {
	_, dataMax, ok := domain.Extent(points)
	if !ok || dataMax <= 0 {
		dataMax = 1
	}
	yMax := dataMax
	if def.CapY > 0 {
		yMax = math.Min(def.CapY, dataMax)
	}
	return Bands{
		Regions: zone.ComputeRegions(0, dataMax, def.Levels),
		Ticks:   zone.ComputeTickPositions(0, yMax, def.Levels),
		YMax:    yMax,
	}
}

// Render draws the series as an SVG document.
func (r *Renderer) Render(def level.Definition, points []domain.Point, opts Options) ([]byte, error) {
	f, err := r.layout(def, points, opts)
	if err != nil {
		return nil, err
	}
	tickFormat, labelFormat := Formatter(def.Format)
	id := func(name string) string { return html.EscapeString(opts.IDPrefix + "-" + name) }
	path := naturalPath(f.xs, f.ys)

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="%s">`,
		opts.Width, opts.Height, opts.Width, opts.Height, html.EscapeString(def.Name))

	b.WriteString(`<defs>`)
	fmt.Fprintf(&b, `<clipPath id="%s"><rect x="0" y="0" width="%s" height="%s"/></clipPath>`,
		id("plot"), coord(f.chartWidth), coord(f.chartHeight))
	for i, region := range f.regions {
		top, bottom := f.y.at(region.ValueTo), f.y.at(region.ValueFrom)
		fmt.Fprintf(&b, `<clipPath id="%s"><rect x="0" y="%s" width="%s" height="%s"/></clipPath>`,
			id(fmt.Sprintf("region-%d", i)), coord(top), coord(f.chartWidth), coord(bottom-top))
	}
	b.WriteString(`</defs>`)

	fmt.Fprintf(&b, `<g transform="translate(%d,%d)">`, opts.MarginLeft, opts.MarginTop)

	fmt.Fprintf(&b, `<g clip-path="url(#%s)">`, id("plot"))
	labelX := f.x.at(f.x.end) - 10
	for i, region := range f.regions {
		fmt.Fprintf(&b, `<g class="chart-region" data-level="%s">`, region.Level)
		fmt.Fprintf(&b, `<g clip-path="url(#%s)"><path d="%s" fill="none" stroke="%s" stroke-width="3" stroke-linecap="round"/></g>`,
			id(fmt.Sprintf("region-%d", i)), path, html.EscapeString(region.Color))
		class := "region-annotation"
		if region.Level == f.lastLevel.Level {
			class += " active"
		}
		writeBoxedAnnotation(&b, class, region.Color, labelX, f.y.at(region.Mid()), region.Name, "end")
		b.WriteString(`</g>`)
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g class="grid-rows">`)
	for _, tick := range f.ticks {
		y := coord(f.y.at(tick))
		fmt.Fprintf(&b, `<line x1="0" x2="%s" y1="%s" y2="%s" stroke="%s"/>`, coord(f.chartWidth), y, y, gridColor)
	}
	b.WriteString(`</g>`)

	lastX, lastY := f.x.at(f.last.X), f.y.at(math.Min(*f.last.Y, f.y.d1))
	writeBoxedAnnotation(&b, "last-point", axisColor, lastX, lastY, labelFormat(*f.last.Y), "middle")

	fmt.Fprintf(&b, `<g class="axis axis-bottom" transform="translate(0,%s)">`, coord(f.chartHeight))
	fmt.Fprintf(&b, `<line x1="0" x2="%s" y1="0" y2="0" stroke="%s"/>`, coord(f.chartWidth), axisColor)
	for _, t := range f.x.dayTicks(int(math.Round(f.chartWidth / 100))) {
		fmt.Fprintf(&b, `<text x="%s" y="18" text-anchor="middle" font-size="11" fill="%s">%s</text>`,
			coord(f.x.at(t)), axisColor, t.Format("Jan 2"))
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g class="axis axis-left">`)
	for _, tick := range f.ticks {
		if tick == 0 {
			continue
		}
		fmt.Fprintf(&b, `<text x="-6" y="%s" dy="0.32em" text-anchor="end" font-size="11" fill="%s">%s</text>`,
			coord(f.y.at(tick)), axisColor, html.EscapeString(tickFormat(tick)))
	}
	b.WriteString(`</g>`)

	b.WriteString(`</g></svg>`)
	return b.Bytes(), nil
}

// writeBoxedAnnotation draws a label on a white box outlined in color.
func writeBoxedAnnotation(b *bytes.Buffer, class, color string, x, y float64, text, anchor string) {
	const (
		charWidth = 7.0
		padding   = 4.0
		boxHeight = 18.0
	)
	width := float64(len(text))*charWidth + 2*padding
	left := x - width/2
	if anchor == "end" {
		left = x - width
	}
	fmt.Fprintf(b, `<g class="%s">`, class)
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="#ffffff" stroke="%s"/>`,
		coord(left), coord(y-boxHeight/2), coord(width), coord(boxHeight), html.EscapeString(color))
	fmt.Fprintf(b, `<text x="%s" y="%s" dy="0.32em" text-anchor="middle" font-size="12" fill="%s">%s</text>`,
		coord(left+width/2), coord(y), html.EscapeString(color), html.EscapeString(text))
	b.WriteString(`</g>`)
}
