package domain

import (
	"math"
	"sort"
	"time"
)

// Point is one day of a metric series. Y is nil when the region reported no value.
type Point struct {
	X time.Time `json:"x"`
	Y *float64  `json:"y"`
}

// NewPoint builds a point with a present value.
func NewPoint(x time.Time, y float64) Point {
	return Point{X: x, Y: &y}
}

// HasData reports whether p has a real date and a finite value.
func HasData(p Point) bool {
	if p.X.IsZero() || p.Y == nil {
		return false
	}
	return !math.IsNaN(*p.Y) && !math.IsInf(*p.Y, 0)
}

// Value returns the point's value, or NaN when it is missing.
func (p Point) Value() float64 {
	if p.Y == nil {
		return math.NaN()
	}
	return *p.Y
}

// ValidPoints returns the points with data, ordered by date ascending.
// The input slice is not modified.
func ValidPoints(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if HasData(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].X.Before(out[j].X) })
	return out
}

// Extent returns the smallest and largest values among points with data.
// ok is false when there are none.
func Extent(points []Point) (lo, hi float64, ok bool) {
	for _, p := range points {
		if !HasData(p) {
			continue
		}
		v := *p.Y
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

// DateRange returns the earliest and latest dates among points with data.
func DateRange(points []Point) (first, last time.Time, ok bool) {
	for _, p := range points {
		if !HasData(p) {
			continue
		}
		if !ok || p.X.Before(first) {
			first = p.X
		}
		if !ok || p.X.After(last) {
			last = p.X
		}
		ok = true
	}
	return first, last, ok
}

// Last returns the final point of an ordered series.
func Last(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	return points[len(points)-1], true
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
