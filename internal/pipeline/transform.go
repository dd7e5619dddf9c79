package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/covid-risk-levels/internal/domain"
	"github.com/couchcryptid/covid-risk-levels/internal/observability"
)

// AssessmentTransformer implements Transformer by parsing the observation and
// classifying it against its metric's level table.
type AssessmentTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *AssessmentTransformer {
	return &AssessmentTransformer{logger: logger, metrics: metrics}
}

func (t *AssessmentTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.Assessment, error) {
	obs, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Assessment{}, err
	}

	a, err := domain.Assess(obs)
	if err != nil {
		return domain.Assessment{}, err
	}

	t.metrics.Classifications.WithLabelValues(string(a.Metric), a.Level.String()).Inc()
	t.logger.Debug("observation assessed",
		"location", a.Location.Key(),
		"metric", a.Metric,
		"date", a.Date.Format("2006-01-02"),
		"level", a.Level,
	)
	return a, nil
}
