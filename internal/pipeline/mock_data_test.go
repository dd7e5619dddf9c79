package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-risk-levels/internal/adapter/memory"
	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
	"github.com/couchcryptid/covid-risk-levels/internal/pipeline"
)

func loadFixture(t *testing.T) []json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "observations.json"))
	require.NoError(t, err)

	var records []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestAssessmentTransformer_WithFixtureData(t *testing.T) {
	transformer := pipeline.NewTransformer(slog.Default(), newTestMetrics())
	records := loadFixture(t)

	type key struct {
		metric level.Metric
		level  level.Level
	}
	counts := map[key]int{}
	for i, rec := range records {
		a, err := transformer.Transform(context.Background(), domain.RawEvent{Value: rec})
		require.NoError(t, err, "record %d", i)
		counts[key{a.Metric, a.Level}]++

		if a.Value == nil {
			assert.Equal(t, level.Unknown, a.Level)
		}
	}

	assert.Equal(t, map[key]int{
		{level.CaseGrowthRate, level.Low}:     2,
		{level.CaseGrowthRate, level.Medium}:  1,
		{level.CaseGrowthRate, level.High}:    1,
		{level.CaseGrowthRate, level.Unknown}: 1,
		{level.TestPositivity, level.Low}:     2,
		{level.TestPositivity, level.Medium}:  2,
		{level.TestPositivity, level.High}:    1,
		{level.ICUHeadroom, level.Low}:        2,
		{level.ICUHeadroom, level.Medium}:     2,
		{level.ICUHeadroom, level.High}:       2,
	}, counts)
}

func TestPipeline_FixtureIntoStore(t *testing.T) {
	records := loadFixture(t)
	batch := make([]domain.RawEvent, len(records))
	for i, rec := range records {
		batch[i] = domain.RawEvent{Value: rec}
	}

	store := memory.NewStore()
	metrics := newTestMetrics()
	p := pipeline.New(
		&mockExtractor{batches: [][]domain.RawEvent{batch}},
		pipeline.NewTransformer(slog.Default(), metrics),
		pipeline.NewStoreLoader(store, metrics),
		slog.Default(), metrics, len(batch),
	)
	runFor(t, p, 500*time.Millisecond)

	points, err := store.Series(context.Background(), domain.Location{State: "CA", County: "alameda_county"}, level.TestPositivity)
	require.NoError(t, err)
	assert.Len(t, points, 5)

	harris, err := store.Series(context.Background(), domain.Location{State: "TX", County: "harris_county"}, level.ICUHeadroom)
	require.NoError(t, err)
	require.Len(t, harris, 1)
	assert.Equal(t, time.Date(2020, time.May, 5, 0, 0, 0, 0, time.UTC), harris[0].X)
}
