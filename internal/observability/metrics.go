package observability

import (
	"database/sql"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/pension-pipeline/internal/pkg/logger"
)

// Metrics holds the pipeline's Prometheus collectors. All methods are safe on
// a nil receiver so callers never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	rowsWritten   *prometheus.CounterVec
	dataQuality   *prometheus.CounterVec
	runs          *prometheus.CounterVec
	lockConflicts prometheus.Counter
	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics once. Later calls return the same instance.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// NewMetrics registers every collector on reg. Tests pass a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		registry: reg,
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pension_stage_duration_seconds",
			Help:    "Wall time of one pipeline stage",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage", "status"}),
		rowsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_stage_rows_written_total",
			Help: "Rows written by pipeline stages",
		}, []string{"stage"}),
		dataQuality: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_data_quality_issues_total",
			Help: "Rows flagged by data-quality checks",
		}, []string{"stage", "check", "severity"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_pipeline_runs_total",
			Help: "Pipeline runs by terminal status",
		}, []string{"status"}),
		lockConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "pension_pipeline_lock_conflicts_total",
			Help: "Runs rejected because another run held the lock",
		}),
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pension_api_requests_total",
			Help: "HTTP requests served",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pension_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RegisterDB exports database/sql pool stats under db_name.
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	if m == nil || db == nil {
		return
	}
	_ = m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) ObserveStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(label(stage), label(status)).Observe(dur.Seconds())
}

func (m *Metrics) AddRowsWritten(stage string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsWritten.WithLabelValues(label(stage)).Add(float64(n))
}

func (m *Metrics) AddDataQuality(stage, check, severity string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.dataQuality.WithLabelValues(label(stage), label(check), label(severity)).Add(float64(n))
}

func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(label(status)).Inc()
}

func (m *Metrics) IncLockConflict() {
	if m == nil {
		return
	}
	m.lockConflicts.Inc()
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(label(method), label(route), label(status)).Inc()
	m.apiLatency.WithLabelValues(label(method), label(route)).Observe(dur.Seconds())
}

func label(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
