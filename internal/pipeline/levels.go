package pipeline

import (
	"time"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

type seriesKey struct {
	location string
	metric   level.Metric
}

type seriesDay struct {
	seriesKey
	day int64
}

func keyOf(a domain.Assessment) seriesKey {
	return seriesKey{location: a.Location.Key(), metric: a.Metric}
}

// latestPerSeriesDay keeps the last assessment for each series and day,
// in the order each series day first appeared.
func latestPerSeriesDay(assessments []domain.Assessment) []domain.Assessment {
	index := make(map[seriesDay]int, len(assessments))
	out := make([]domain.Assessment, 0, len(assessments))
	for _, a := range assessments {
		k := seriesDay{seriesKey: keyOf(a), day: a.Date.Unix()}
		if i, ok := index[k]; ok {
			out[i] = a
			continue
		}
		index[k] = len(out)
		out = append(out, a)
	}
	return out
}

type latestLevel struct {
	date  time.Time
	level level.Level
}

// levelTracker remembers the level of each series' most recent dated
// assessment. It is not safe for concurrent use.
type levelTracker struct {
	latest map[seriesKey]latestLevel
}

func newLevelTracker() *levelTracker {
	return &levelTracker{latest: make(map[seriesKey]latestLevel)}
}

// observe records a when it is at least as recent as the series' latest
// known assessment and reports whether that moved the series to a different
// level. Unknown assessments are ignored, as is the first one seen per series.
func (t *levelTracker) observe(a domain.Assessment) (from level.Level, changed bool) {
	if a.Level == level.Unknown {
		return level.Unknown, false
	}
	k := keyOf(a)
	prev, seen := t.latest[k]
	if seen && a.Date.Before(prev.date) {
		return level.Unknown, false
	}
	t.latest[k] = latestLevel{date: a.Date, level: a.Level}
	if !seen || prev.level == a.Level {
		return level.Unknown, false
	}
	return prev.level, true
}
