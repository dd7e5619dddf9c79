package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/observability"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a raw observation message into a classified assessment.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Assessment, error)
}

// BatchLoader writes assessments to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, assessments []domain.Assessment) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline assesses observations batch by batch. Within a batch only the
// last observation of each series day is loaded, and each series' latest
// level is tracked so transitions can be reported.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int

	levels   *levelTracker
	loadedAt atomic.Int64 // unix nanos of the last successful load
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		levels:      newLevelTracker(),
	}
}

// CheckReadiness returns nil once a batch of assessments has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.loadedAt.Load() == 0 {
		return errors.New("pipeline has not loaded any assessments yet")
	}
	return nil
}

// Run processes batches until the context is cancelled. Extract and load
// failures back off exponentially from 200ms up to 5s.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	delay := initialBackoff
	for ctx.Err() == nil {
		err := p.runBatch(ctx)
		if err == nil {
			delay = initialBackoff
			continue
		}
		if ctx.Err() != nil {
			break
		}
		p.logger.Error("batch failed", "error", err, "backoff", delay)
		if retry.SleepWithContext(ctx, delay) {
			delay = retry.NextBackoff(delay, maxBackoff)
		}
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// runBatch extracts, assesses and loads one batch. Messages that cannot be
// assessed are committed and skipped; the rest are committed only after the
// load succeeds.
func (p *Pipeline) runBatch(ctx context.Context) error {
	start := time.Now()

	raws, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("extract batch: %w", err)
	}
	if len(raws) == 0 {
		return nil
	}
	p.metrics.MessagesConsumed.Add(float64(len(raws)))
	p.metrics.BatchSize.Observe(float64(len(raws)))

	assessed := make([]domain.Assessment, 0, len(raws))
	pending := make([]domain.RawEvent, 0, len(raws))
	for _, raw := range raws {
		a, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("skipping unassessable observation",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		assessed = append(assessed, a)
		pending = append(pending, raw)
	}
	if len(assessed) == 0 {
		return nil
	}

	batch := latestPerSeriesDay(assessed)
	p.metrics.Superseded.Add(float64(len(assessed) - len(batch)))

	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		return fmt.Errorf("load %d assessments: %w", len(batch), err)
	}
	p.metrics.MessagesProduced.Add(float64(len(batch)))
	for _, raw := range pending {
		p.commit(ctx, raw)
	}

	p.reportTransitions(batch)
	p.loadedAt.Store(time.Now().UnixNano())
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return nil
}

func (p *Pipeline) reportTransitions(batch []domain.Assessment) {
	for _, a := range batch {
		from, changed := p.levels.observe(a)
		if !changed {
			continue
		}
		p.metrics.LevelChanges.WithLabelValues(string(a.Metric), from.String(), a.Level.String()).Inc()
		p.logger.Info("risk level changed",
			"location", a.Location.Key(),
			"metric", a.Metric,
			"date", a.Date.Format(time.DateOnly),
			"from", from,
			"to", a.Level,
		)
	}
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
