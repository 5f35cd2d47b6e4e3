package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics provides Prometheus metrics for merge runs. A disabled Metrics
// accepts every Record call and does nothing.
type Metrics struct {
	config MetricsConfig

	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	files        *prometheus.CounterVec
	errors       *prometheus.CounterVec
	resolutions  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes_total",
				Help:      "Total number of merge passes",
			},
			[]string{"mode", "status"},
		),
		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_duration_seconds",
				Help:      "Duration of merge passes in seconds",
				Buckets:   buckets,
			},
			[]string{"mode"},
		),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "satellite_files_total",
				Help:      "Satellite manifests visited, by outcome",
			},
			[]string{"outcome"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of merge errors by kind",
			},
			[]string{"kind"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "followup_resolutions_total",
				Help:      "Follow-up dependency resolutions after first install",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.passes,
		m.passDuration,
		m.files,
		m.errors,
		m.resolutions,
	)

	return m, nil
}

// RecordPass records a finished merge pass.
func (m *Metrics) RecordPass(mode string, success bool, duration time.Duration) {
	if m.passes == nil {
		return
	}
	status := "succeeded"
	if !success {
		status = "failed"
	}
	m.passes.WithLabelValues(mode, status).Inc()
	m.passDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordFile records one satellite visit.
func (m *Metrics) RecordFile(outcome string) {
	if m.files == nil {
		return
	}
	m.files.WithLabelValues(outcome).Inc()
}

// RecordError records a merge error by kind.
func (m *Metrics) RecordError(kind string) {
	if m.errors == nil {
		return
	}
	m.errors.WithLabelValues(kind).Inc()
}

// RecordResolution records the outcome of a follow-up resolution run.
func (m *Metrics) RecordResolution(success bool) {
	if m.resolutions == nil {
		return
	}
	status := "succeeded"
	if !success {
		status = "failed"
	}
	m.resolutions.WithLabelValues(status).Inc()
}

// Registry returns the private registry, or nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics. It is used by
// long-running watch mode.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("address", m.config.ListenAddress).Msg("Metrics server error")
		}
	}()

	return nil
}
