package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the Prometheus collectors for recommendation runs.
// 각 Recorder는 자체 Registry를 사용 (테스트에서 중복 등록 방지)
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal         *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	StageSymbols      *prometheus.CounterVec
	SymbolErrors      *prometheus.CounterVec
	Recommendations   prometheus.Gauge
	PredictorRequests *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockreco_runs_total",
				Help: "Total number of recommendation runs by status",
			},
			[]string{"status"},
		),

		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockreco_run_duration_seconds",
				Help:    "Duration of recommendation runs in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"status"},
		),

		StageSymbols: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockreco_stage_symbols_total",
				Help: "Number of symbols leaving each pipeline stage",
			},
			[]string{"stage"},
		),

		SymbolErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockreco_symbol_errors_total",
				Help: "Per-symbol failures by error kind",
			},
			[]string{"kind"},
		),

		Recommendations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stockreco_recommendations",
				Help: "Number of recommendations produced by the last successful run",
			},
		),

		PredictorRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockreco_predictor_requests_total",
				Help: "Predictor lookups by result (hit, miss, error, cached)",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(
		r.RunsTotal,
		r.RunDuration,
		r.StageSymbols,
		r.SymbolErrors,
		r.Recommendations,
		r.PredictorRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// ObserveRun records the outcome of one run.
func (r *Recorder) ObserveRun(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(status).Inc()
	r.RunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveStage records how many symbols survived a stage.
func (r *Recorder) ObserveStage(stage string, symbols int) {
	if r == nil {
		return
	}
	r.StageSymbols.WithLabelValues(stage).Add(float64(symbols))
}

// ObserveSymbolErrors records n per-symbol failures of one kind.
func (r *Recorder) ObserveSymbolErrors(kind string, n int) {
	if r == nil {
		return
	}
	r.SymbolErrors.WithLabelValues(kind).Add(float64(n))
}

// SetRecommendations sets the size of the latest recommendation list.
func (r *Recorder) SetRecommendations(n int) {
	if r == nil {
		return
	}
	r.Recommendations.Set(float64(n))
}

// ObservePredictor records a predictor lookup result.
func (r *Recorder) ObservePredictor(result string) {
	if r == nil {
		return
	}
	r.PredictorRequests.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the /metrics HTTP handler.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
