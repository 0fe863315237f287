package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sourceFetches *prometheus.CounterVec
	sourceLatency *prometheus.HistogramVec
	analysisRuns  *prometheus.CounterVec
	analysisTime  *prometheus.HistogramVec
	runsInFlight  *prometheus.GaugeVec
	threatScore   prometheus.Gauge
	lastPrice     *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		sourceFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intelpull_source_fetches_total",
				Help: "Source fetches by provider and result",
			},
			[]string{"source", "result"},
		),
		sourceLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intelpull_source_fetch_seconds",
				Help:    "Source fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		analysisRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intelpull_analysis_runs_total",
				Help: "Analysis pipeline runs by tier and result",
			},
			[]string{"tier", "result"},
		),
		analysisTime: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intelpull_analysis_run_seconds",
				Help:    "Analysis pipeline run duration in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"tier"},
		),
		runsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "intelpull_analysis_runs_in_flight",
				Help: "Currently executing analysis runs per tier",
			},
			[]string{"tier"},
		),
		threatScore: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "intelpull_threat_score",
				Help: "Last computed heuristic threat score",
			},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "intelpull_last_price",
				Help: "Last observed price for a tracked symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordSourceFetch records one provider fetch outcome.
func (r *Recorder) RecordSourceFetch(source string, ok bool, seconds float64) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.sourceFetches.WithLabelValues(source, result).Inc()
	r.sourceLatency.WithLabelValues(source).Observe(seconds)
}

// RecordAnalysisRun records one pipeline run outcome.
func (r *Recorder) RecordAnalysisRun(tier string, ok bool, seconds float64) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.analysisRuns.WithLabelValues(tier, result).Inc()
	r.analysisTime.WithLabelValues(tier).Observe(seconds)
}

// RecordRunInFlight moves the per-tier in-flight gauge.
func (r *Recorder) RecordRunInFlight(tier string, delta int) {
	r.runsInFlight.WithLabelValues(tier).Add(float64(delta))
}

// RecordThreatScore records the last heuristic score.
func (r *Recorder) RecordThreatScore(score float64) {
	r.threatScore.Set(score)
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}
