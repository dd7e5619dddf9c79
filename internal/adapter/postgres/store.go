// Package postgres persists metric series in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS metric_observations (
    state      TEXT             NOT NULL,
    county     TEXT             NOT NULL DEFAULT '',
    metric     TEXT             NOT NULL,
    day        DATE             NOT NULL,
    value      DOUBLE PRECISION,
    updated_at TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    PRIMARY KEY (state, county, metric, day)
)`

const upsertSQL = `
INSERT INTO metric_observations (state, county, metric, day, value, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (state, county, metric, day) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = NOW()`

const seriesSQL = `
SELECT day, value
FROM metric_observations
WHERE state = $1 AND county = $2 AND metric = $3
ORDER BY day`

// Store is a domain.SeriesStore backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and ensures the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the observations table if it is missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Upsert(ctx context.Context, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, obs := range observations {
		batch.Queue(upsertSQL,
			obs.Location.State, obs.Location.County, string(obs.Metric), domain.Day(obs.Point.X), obs.Point.Y)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range observations {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upsert observation: %w", err)
		}
	}
	return nil
}

func (s *Store) Series(ctx context.Context, loc domain.Location, metric level.Metric) ([]domain.Point, error) {
	rows, err := s.pool.Query(ctx, seriesSQL, loc.State, loc.County, string(metric))
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var points []domain.Point
	for rows.Next() {
		var day time.Time
		var value *float64
		if err := rows.Scan(&day, &value); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		points = append(points, domain.Point{X: domain.Day(day), Y: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read series: %w", err)
	}
	if len(points) == 0 {
		return nil, domain.ErrNotFound
	}
	return points, nil
}

// CheckReadiness pings the database.
func (s *Store) CheckReadiness(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
