package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

var testNow = time.Date(2020, time.May, 15, 12, 0, 0, 0, time.UTC)

func testRenderer() *Renderer {
	return NewRenderer(clockwork.NewFakeClockAt(testNow))
}

func series(values ...float64) []domain.Point {
	start := time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.Point, len(values))
	for i, v := range values {
		points[i] = domain.NewPoint(start.AddDate(0, 0, i), v)
	}
	return points
}

func mustDef(t *testing.T, id level.Metric) level.Definition {
	t.Helper()
	def, err := level.Lookup(id)
	require.NoError(t, err)
	return def
}

func TestLayout_Frame(t *testing.T) {
	def := mustDef(t, level.CaseGrowthRate)
	f, err := testRenderer().layout(def, series(0.9, 1.0, 1.1, 1.3, 1.4), DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 555, f.chartWidth, 1e-9)
	assert.InDelta(t, 355, f.chartHeight, 1e-9)
	assert.Equal(t, testNow.Add(futureWindow), f.x.end)
	assert.InDelta(t, 1.4, f.y.d1, 1e-12)
	assert.Equal(t, []float64{1.0, 1.2}, f.ticks)
	require.Len(t, f.regions, 3)
	assert.Equal(t, level.High, f.lastLevel.Level)

	assert.InDelta(t, 0, f.xs[0], 1e-9, "first point sits on the left edge")
	assert.InDelta(t, 0, f.ys[4], 1e-9, "maximum sits on the top edge")
}

func TestLayout_CapsAxisButNotRegions(t *testing.T) {
	def := mustDef(t, level.CaseGrowthRate)
	f, err := testRenderer().layout(def, series(1.0, 3.0), DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, def.CapY, f.y.d1, 1e-12)
	require.Len(t, f.regions, 3)
	assert.InDelta(t, 3.0, f.regions[2].ValueTo, 1e-12)
	assert.Equal(t, []float64{1.0, 1.2}, f.ticks)
}

func TestLayout_AllZeroSeries(t *testing.T) {
	def := mustDef(t, level.CaseGrowthRate)
	f, err := testRenderer().layout(def, series(0, 0, 0), DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 1.0, f.y.d1, 1e-12)
	require.Len(t, f.regions, 1)
	assert.Equal(t, level.Low, f.regions[0].Level)
}

func TestLayout_SkipsMissingValues(t *testing.T) {
	def := mustDef(t, level.TestPositivity)
	points := append(series(0.02, 0.04), domain.Point{X: time.Date(2020, time.May, 3, 0, 0, 0, 0, time.UTC)})
	f, err := testRenderer().layout(def, points, DefaultOptions())
	require.NoError(t, err)

	assert.Len(t, f.xs, 2)
	assert.Equal(t, level.Medium, f.lastLevel.Level)
}

func TestRender_NoData(t *testing.T) {
	def := mustDef(t, level.ICUHeadroom)

	_, err := testRenderer().Render(def, nil, DefaultOptions())
	require.ErrorIs(t, err, ErrNoData)

	_, err = testRenderer().Render(def, []domain.Point{{X: testNow}}, DefaultOptions())
	require.ErrorIs(t, err, ErrNoData)
}

func TestRender_EmptyArea(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 30

	_, err := testRenderer().Render(mustDef(t, level.ICUHeadroom), series(0.5), opts)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestRender_OneClipPathPerRegion(t *testing.T) {
	def := mustDef(t, level.CaseGrowthRate)
	svg, err := testRenderer().Render(def, series(0.9, 1.0, 1.1, 1.3, 1.4), DefaultOptions())
	require.NoError(t, err)
	out := string(svg)

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Contains(t, out, `id="chart-plot"`)
	for _, id := range []string{"chart-region-0", "chart-region-1", "chart-region-2"} {
		assert.Contains(t, out, `id="`+id+`"`)
		assert.Contains(t, out, `clip-path="url(#`+id+`)"`)
	}
	assert.NotContains(t, out, "chart-region-3")

	for _, color := range []string{level.ColorGreen, level.ColorOrange, level.ColorRed} {
		assert.Contains(t, out, `stroke="`+color+`"`)
	}
}

func TestRender_MarksActiveRegion(t *testing.T) {
	def := mustDef(t, level.CaseGrowthRate)
	svg, err := testRenderer().Render(def, series(1.4, 1.3, 1.1), DefaultOptions())
	require.NoError(t, err)
	out := string(svg)

	assert.Equal(t, 1, strings.Count(out, `class="region-annotation active"`))
	active := strings.Index(out, `class="region-annotation active"`)
	medium := strings.Index(out, `data-level="medium"`)
	high := strings.Index(out, `data-level="high"`)
	assert.Greater(t, active, medium)
	assert.Less(t, active, high)
}

func TestRender_Labels(t *testing.T) {
	def := mustDef(t, level.TestPositivity)
	svg, err := testRenderer().Render(def, series(0.02, 0.05, 0.125), DefaultOptions())
	require.NoError(t, err)
	out := string(svg)

	assert.Contains(t, out, ">12.5%<", "last point label")
	assert.Contains(t, out, ">3%<", "low threshold tick")
	assert.Contains(t, out, ">10%<", "medium threshold tick")
	assert.Contains(t, out, ">May 1<")
	assert.Contains(t, out, `aria-label="Positive test rate"`)
}

func TestRender_IDPrefix(t *testing.T) {
	opts := DefaultOptions()
	opts.IDPrefix = "ca-icu"
	svg, err := testRenderer().Render(mustDef(t, level.ICUHeadroom), series(0.4, 0.6), opts)
	require.NoError(t, err)

	assert.Contains(t, string(svg), `id="ca-icu-region-0"`)
	assert.NotContains(t, string(svg), `id="chart-`)
}

func TestNaturalPath(t *testing.T) {
	assert.Empty(t, naturalPath(nil, nil))
	assert.Equal(t, "M1.00,2.00", naturalPath([]float64{1}, []float64{2}))
	assert.Equal(t, "M0.00,0.00L10.00,5.00", naturalPath([]float64{0, 10}, []float64{0, 5}))

	path := naturalPath([]float64{0, 1, 2, 3}, []float64{0, 1, 0, 1})
	assert.True(t, strings.HasPrefix(path, "M0.00,0.00C"))
	assert.Equal(t, 3, strings.Count(path, "C"))
	assert.True(t, strings.HasSuffix(path, ",3.00,1.00"))
}

func TestControlPoints_StraightLine(t *testing.T) {
	c1, c2 := controlPoints([]float64{0, 1, 2})

	require.Len(t, c1, 2)
	require.Len(t, c2, 2)
	assert.InDelta(t, 1.0/3, c1[0], 1e-9)
	assert.InDelta(t, 2.0/3, c2[0], 1e-9)
	assert.InDelta(t, 4.0/3, c1[1], 1e-9)
	assert.InDelta(t, 5.0/3, c2[1], 1e-9)
}

func TestFormatter(t *testing.T) {
	tick, label := Formatter(level.FormatPercent)
	assert.Equal(t, "3%", tick(0.03))
	assert.Equal(t, "12.5%", label(0.125))

	tick, label = Formatter(level.FormatDecimal)
	assert.Equal(t, "1.2", tick(1.2))
	assert.Equal(t, "1.05", label(1.05))
}

func TestDayTicks(t *testing.T) {
	s := timeScale{
		start: time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2020, time.May, 11, 0, 0, 0, 0, time.UTC),
		r0:    0,
		r1:    100,
	}

	ticks := s.dayTicks(5)
	require.Len(t, ticks, 6)
	assert.Equal(t, s.start, ticks[0])
	assert.Equal(t, s.end, ticks[5])
	assert.InDelta(t, 50, s.at(ticks[3].Add(-24*time.Hour)), 1e-9)

	assert.Nil(t, s.dayTicks(0))
}

func TestComputeBands(t *testing.T) {
	def := mustDef(t, level.TestPositivity)

	b := ComputeBands(def, series(0.01, 0.6))
	assert.InDelta(t, 0.4, b.YMax, 1e-12)
	assert.Equal(t, []float64{0.03, 0.1}, b.Ticks)
	require.Len(t, b.Regions, 3)
	assert.InDelta(t, 0.6, b.Regions[2].ValueTo, 1e-12)

	empty := ComputeBands(def, nil)
	assert.InDelta(t, 0.4, empty.YMax, 1e-12, "unit axis capped by the metric")
	require.Len(t, empty.Regions, 3)
}
