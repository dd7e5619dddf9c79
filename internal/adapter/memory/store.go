// Package memory provides an in-process series store used when no database
// is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

type seriesKey struct {
	loc    domain.Location
	metric level.Metric
}

// Store keeps one value per location, metric and day.
type Store struct {
	mu     sync.RWMutex
	series map[seriesKey]map[time.Time]*float64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{series: make(map[seriesKey]map[time.Time]*float64)}
}

func (s *Store) Upsert(_ context.Context, observations []domain.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, obs := range observations {
		key := seriesKey{loc: obs.Location, metric: obs.Metric}
		days, ok := s.series[key]
		if !ok {
			days = make(map[time.Time]*float64)
			s.series[key] = days
		}
		var v *float64
		if obs.Point.Y != nil {
			y := *obs.Point.Y
			v = &y
		}
		days[domain.Day(obs.Point.X)] = v
	}
	return nil
}

func (s *Store) Series(_ context.Context, loc domain.Location, metric level.Metric) ([]domain.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	days := s.series[seriesKey{loc: loc, metric: metric}]
	if len(days) == 0 {
		return nil, domain.ErrNotFound
	}

	points := make([]domain.Point, 0, len(days))
	for day, v := range days {
		p := domain.Point{X: day}
		if v != nil {
			y := *v
			p.Y = &y
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X.Before(points[j].X) })
	return points, nil
}

func (s *Store) CheckReadiness(context.Context) error {
	return nil
}
