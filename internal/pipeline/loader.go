package pipeline

import (
	"context"
	"fmt"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/observability"
)

// StoreLoader writes assessed observations into a series store so the HTTP
// API can chart them.
type StoreLoader struct {
	store   domain.SeriesStore
	metrics *observability.Metrics
}

// NewStoreLoader creates a StoreLoader.
func NewStoreLoader(store domain.SeriesStore, metrics *observability.Metrics) *StoreLoader {
	return &StoreLoader{store: store, metrics: metrics}
}

func (l *StoreLoader) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}
	observations := make([]domain.Observation, len(assessments))
	for i, a := range assessments {
		observations[i] = domain.Observation{
			Location: a.Location,
			Metric:   a.Metric,
			Point:    domain.Point{X: a.Date, Y: a.Value},
		}
	}
	if err := l.store.Upsert(ctx, observations); err != nil {
		return fmt.Errorf("store assessments: %w", err)
	}
	l.metrics.StoreWrites.Add(float64(len(observations)))
	return nil
}

// MultiLoader loads each batch into every loader in order, stopping at the
// first failure.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, assessments []domain.Assessment) error {
	for _, l := range m {
		if err := l.LoadBatch(ctx, assessments); err != nil {
			return err
		}
	}
	return nil
}
