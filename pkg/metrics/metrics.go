package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics aggregates the service-level Prometheus instruments.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline stage outcomes, labeled by stage and by whether the value
	// shown to the user was real or a fallback substitute.
	pipelineStageTotal *prometheus.CounterVec
	pipelineRunsTotal  prometheus.Counter

	aiRequestsTotal *prometheus.CounterVec

	maintenanceDuplicatesRemoved prometheus.Counter
	maintenanceRolesFixed        prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		pipelineStageTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_stage_total",
				Help: "Voice-to-sign pipeline stage outcomes",
			},
			[]string{"stage", "source"},
		),
		pipelineRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Completed voice-to-sign pipeline cycles",
			},
		),
		aiRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Requests issued to the AI API",
			},
			[]string{"endpoint", "outcome"},
		),
		maintenanceDuplicatesRemoved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "maintenance_duplicates_removed_total",
				Help: "User rows removed by the duplicate-email collapse",
			},
		),
		maintenanceRolesFixed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "maintenance_roles_fixed_total",
				Help: "User roles repaired by the integrity pass",
			},
		),
	}
}

func (m *Metrics) ObserveStage(stage, source string) {
	m.pipelineStageTotal.WithLabelValues(stage, source).Inc()
}

func (m *Metrics) ObserveRun() { m.pipelineRunsTotal.Inc() }

func (m *Metrics) ObserveAIRequest(endpoint, outcome string) {
	m.aiRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) ObserveMaintenance(duplicates, roles int) {
	m.maintenanceDuplicatesRemoved.Add(float64(duplicates))
	m.maintenanceRolesFixed.Add(float64(roles))
}
