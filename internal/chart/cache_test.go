package chart

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/level"
	"github.com/couchcryptid/covid-risk-levels/internal/observability"
)

type countingRenderer struct {
	calls atomic.Int64
	err   error
}

func (c *countingRenderer) Render(def level.Definition, _ []domain.Point, _ Options) ([]byte, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return []byte("<svg>" + def.Name + "</svg>"), nil
}

func TestCachedRenderer_HitAndMiss(t *testing.T) {
	inner := &countingRenderer{}
	metrics := observability.NewMetricsForTesting()
	c := NewCachedRenderer(inner, 8, time.Minute, metrics)
	def := mustDef(t, level.CaseGrowthRate)

	first, err := c.Render(def, series(0.9, 1.1), DefaultOptions())
	require.NoError(t, err)
	second, err := c.Render(def, series(0.9, 1.1), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChartCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChartCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChartRenders))
	assert.Equal(t, 1, c.Len())
}

func TestCachedRenderer_KeyCoversContent(t *testing.T) {
	inner := &countingRenderer{}
	c := NewCachedRenderer(inner, 8, time.Minute, observability.NewMetricsForTesting())
	def := mustDef(t, level.CaseGrowthRate)
	opts := DefaultOptions()

	_, _ = c.Render(def, series(0.9, 1.1), opts)
	_, _ = c.Render(def, series(0.9, 1.2), opts)
	_, _ = c.Render(mustDef(t, level.ICUHeadroom), series(0.9, 1.1), opts)
	opts.Width = 800
	_, _ = c.Render(def, series(0.9, 1.1), opts)
	_, _ = c.Render(def, append(series(0.9, 1.1), domain.Point{X: testNow}), DefaultOptions())

	assert.Equal(t, int64(5), inner.calls.Load())
}

func TestCachedRenderer_ErrorsNotCached(t *testing.T) {
	inner := &countingRenderer{err: errors.New("boom")}
	c := NewCachedRenderer(inner, 8, time.Minute, observability.NewMetricsForTesting())
	def := mustDef(t, level.ICUHeadroom)

	_, err := c.Render(def, series(0.5), DefaultOptions())
	require.Error(t, err)
	_, err = c.Render(def, series(0.5), DefaultOptions())
	require.Error(t, err)

	assert.Equal(t, int64(2), inner.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCacheKey_Stable(t *testing.T) {
	a := cacheKey(level.TestPositivity, series(0.01, 0.02), DefaultOptions())
	b := cacheKey(level.TestPositivity, series(0.01, 0.02), DefaultOptions())
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}
