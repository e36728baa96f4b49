// Package metrics exposes Prometheus collectors for report runs, collector
// polls and HTTP requests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energy_report/internal/runner"
)

const namespace = "energy_report"

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	rowsAnalyzed      prometheus.Gauge
	reportsTotal      *prometheus.CounterVec
	lastSuccess       prometheus.Gauge
	runInProgress     prometheus.Gauge
	pollRowsTotal     prometheus.Counter
	pollFailuresTotal prometheus.Counter
	pollDuration      prometheus.Histogram

	wsDropped prometheus.CounterFunc
	wsClients prometheus.GaugeFunc
}

// HubStats is the view of a websocket hub exported by WatchHub.
type HubStats interface {
	ClientCount() int
	Dropped() int
}

// New registers all collectors on a fresh registry, so several instances
// can live in one process.
func New() *Metrics {
	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Report runs by outcome and the state they reached.",
		}, []string{"outcome", "state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of report runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		rowsAnalyzed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_rows_analyzed",
			Help:      "Rows analyzed by the most recent run.",
		}),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports written by kind and result.",
		}, []string{"kind", "result"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		runInProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_in_progress",
			Help:      "1 while a report run is executing.",
		}),
		pollRowsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collector_rows_total",
			Help:      "Rows appended by the Home Assistant collector.",
		}),
		pollFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collector_failures_total",
			Help:      "Entity reads that failed during collector polls.",
		}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collector_poll_duration_seconds",
			Help:      "Duration of collector poll rounds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.runsTotal,
		m.runDuration,
		m.rowsAnalyzed,
		m.reportsTotal,
		m.lastSuccess,
		m.runInProgress,
		m.pollRowsTotal,
		m.pollFailuresTotal,
		m.pollDuration,
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// WrapHandler counts requests and their duration under route. It does not
// support connection hijacking, so websocket routes stay unwrapped.
func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.runInProgress.Set(1)
}

// RunFinished records the outcome of a run and of every report it tried.
func (m *Metrics) RunFinished(s *runner.RunSummary) {
	if m == nil || s == nil {
		return
	}
	m.runInProgress.Set(0)

	outcome := "success"
	if !s.Success {
		outcome = "failure"
	}
	m.runsTotal.WithLabelValues(outcome, s.State.String()).Inc()
	m.runDuration.Observe(s.FinishedAt.Sub(s.StartedAt).Seconds())
	m.rowsAnalyzed.Set(float64(s.RowsAnalyzed))
	for _, item := range s.Items {
		result := "ok"
		if !item.Success {
			result = "failed"
		}
		m.reportsTotal.WithLabelValues(string(item.Kind), result).Inc()
	}
	if s.Success {
		m.lastSuccess.Set(float64(s.FinishedAt.Unix()))
	}
}

// WatchHub exports the connected client count and dropped messages of h.
// It is called once per Metrics.
func (m *Metrics) WatchHub(h HubStats) {
	if m == nil || h == nil {
		return
	}
	m.wsDropped = prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ws_dropped_messages_total",
		Help:      "Websocket events dropped because a client buffer was full.",
	}, func() float64 { return float64(h.Dropped()) })
	m.wsClients = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_clients",
		Help:      "Connected websocket clients.",
	}, func() float64 { return float64(h.ClientCount()) })
	m.registry.MustRegister(m.wsDropped, m.wsClients)
}

// PollCompleted implements collector.Recorder.
func (m *Metrics) PollCompleted(rows, failures int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pollRowsTotal.Add(float64(rows))
	m.pollFailuresTotal.Add(float64(failures))
	m.pollDuration.Observe(elapsed.Seconds())
}
