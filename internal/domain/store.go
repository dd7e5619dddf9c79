package domain

import (
	"context"
	"errors"

	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

// ErrNotFound is returned when a location, metric or series does not exist.
var ErrNotFound = errors.New("not found")

// SeriesStore persists metric series per location.
type SeriesStore interface {
	// Upsert stores observations, replacing any existing value for the same
	// location, metric and day.
	Upsert(ctx context.Context, observations []Observation) error

	// Series returns every stored point for a location and metric, ordered by
	// date ascending. Returns ErrNotFound when nothing is stored.
	Series(ctx context.Context, loc Location, metric level.Metric) ([]Point, error)

	// CheckReadiness reports whether the store can serve requests.
	CheckReadiness(ctx context.Context) error
}
