package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "covid_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline, chart rendering, and HTTP API.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Classification metrics.
	Classifications *prometheus.CounterVec // labels: metric, level
	LevelChanges    *prometheus.CounterVec // labels: metric, from, to
	Superseded      prometheus.Counter
	StoreWrites     prometheus.Counter

	// Chart metrics.
	ChartRenders        prometheus.Counter
	ChartCache          *prometheus.CounterVec // labels: result={hit,miss}
	ChartRenderDuration prometheus.Histogram

	HTTPRequests *prometheus.CounterVec // labels: route, status
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total observations read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total assessments written to the sink.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total observations that could not be parsed or assessed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Values classified by metric and resulting level.",
		}, []string{"metric", "level"}),
		LevelChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_changes_total",
			Help:      "Series whose latest risk level moved, by metric and transition.",
		}, []string{"metric", "from", "to"}),
		Superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "superseded_observations_total",
			Help:      "Observations dropped because a later message in the same batch covered the same series day.",
		}),
		StoreWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Observations upserted into the series store.",
		}),
		ChartRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Charts rendered (cache misses that succeeded).",
		}),
		ChartCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_cache_total",
			Help:      "Chart cache lookups by result.",
		}, []string{"result"}),
		ChartRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent rendering an SVG chart.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Classifications,
		m.LevelChanges,
		m.Superseded,
		m.StoreWrites,
		m.ChartRenders,
		m.ChartCache,
		m.ChartRenderDuration,
		m.HTTPRequests,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		Classifications:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "classifications_total"}, []string{"metric", "level"}),
		LevelChanges:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "level_changes_total"}, []string{"metric", "from", "to"}),
		Superseded:              prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "superseded_observations_total"}),
		StoreWrites:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "store_writes_total"}),
		ChartRenders:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "chart_renders_total"}),
		ChartCache:              prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "chart_cache_total"}, []string{"result"}),
		ChartRenderDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "chart_render_duration_seconds"}),
		HTTPRequests:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"route", "status"}),
	}
}
