package chart

import (
	"math"
	"time"
)

// linearScale maps a value domain onto a pixel range.
type linearScale struct {
	d0, d1 float64
	r0, r1 float64
}

func (s linearScale) at(v float64) float64 {
	if s.d1 == s.d0 {
		return s.r0
	}
	return s.r0 + (v-s.d0)/(s.d1-s.d0)*(s.r1-s.r0)
}

// timeScale maps a time domain onto a pixel range.
type timeScale struct {
	start, end time.Time
	r0, r1     float64
}

func (s timeScale) at(t time.Time) float64 {
	span := s.end.Sub(s.start)
	if span <= 0 {
		return s.r0
	}
	return s.r0 + float64(t.Sub(s.start))/float64(span)*(s.r1-s.r0)
}

// dayTicks returns roughly count evenly spaced dates within the domain, snapped
// to whole days so labels read cleanly.
func (s timeScale) dayTicks(count int) []time.Time {
	if count < 1 || !s.end.After(s.start) {
		return nil
	}
	stepDays := math.Ceil(s.end.Sub(s.start).Hours() / 24 / float64(count))
	if stepDays < 1 {
		stepDays = 1
	}
	step := int(stepDays)

	first := time.Date(s.start.Year(), s.start.Month(), s.start.Day(), 0, 0, 0, 0, time.UTC)
	if first.Before(s.start) {
		first = first.AddDate(0, 0, 1)
	}
	var ticks []time.Time
	for t := first; !t.After(s.end); t = t.AddDate(0, 0, step) {
		ticks = append(ticks, t)
	}
	return ticks
}
