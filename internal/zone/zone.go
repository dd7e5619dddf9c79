// Package zone splits a chart's value range into coloured bands, one per risk
// level, and finds the threshold positions where grid lines belong.
package zone

import (
	"math"

	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

// Region is one horizontal band of a chart's value range.
type Region struct {
	Name      string      `json:"name"`
	Level     level.Level `json:"level"`
	Color     string      `json:"color"`
	ValueFrom float64     `json:"value_from"`
	ValueTo   float64     `json:"value_to"`
}

// Span is the band's height in value units.
func (r Region) Span() float64 {
	return r.ValueTo - r.ValueFrom
}

// Mid is the value halfway through the band, where its label is drawn.
func (r Region) Mid() float64 {
	return 0.5 * (r.ValueFrom + r.ValueTo)
}

// ComputeRegions returns the bands of [yMin, yMax] covered by each level, in
// ascending level order. Each band starts at the previous level's upper limit
// (never below yMin) and ends at its own limit clipped to yMax, so the
// unbounded top level gets a finite height. Empty bands are omitted.
func ComputeRegions(yMin, yMax float64, table level.LevelInfoMap) []Region {
	infos := table.Ordered()
	regions := make([]Region, 0, len(infos))

	from := yMin
	for _, info := range infos {
		to := math.Min(info.UpperLimit, yMax)
		if from < to {
			regions = append(regions, Region{
				Name:      info.Name,
				Level:     info.Level,
				Color:     info.Color,
				ValueFrom: from,
				ValueTo:   to,
			})
		}
		from = math.Max(info.UpperLimit, yMin)
	}
	return regions
}

// ComputeTickPositions returns every level threshold strictly inside
// (yMin, yMax), ascending.
func ComputeTickPositions(yMin, yMax float64, table level.LevelInfoMap) []float64 {
	ticks := make([]float64, 0, 2)
	for _, info := range table.Ordered() {
		if info.UpperLimit > yMin && info.UpperLimit < yMax {
			ticks = append(ticks, info.UpperLimit)
		}
	}
	return ticks
}

// Active returns the region whose level matches info, if it is visible.
func Active(regions []Region, info level.LevelInfo) (Region, bool) {
	for _, r := range regions {
		if r.Level == info.Level {
			return r, true
		}
	}
	return Region{}, false
}
