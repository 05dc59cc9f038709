package metricsvc

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/hrms/core/attendance"
)

const namespace = "hrms"

// Metrics holds the application collectors on their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	qrScans        *prometheus.CounterVec
	leaveDecisions *prometheus.CounterVec
	sweepRuns      *prometheus.CounterVec
	sweepRows      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
		qrScans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "attendance",
				Name:      "qr_scans_total",
				Help:      "QR scans by outcome.",
			},
			[]string{"result"},
		),
		leaveDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "leave",
				Name:      "decisions_total",
				Help:      "Leave decisions by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		sweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "attendance",
				Name:      "sweep_days_total",
				Help:      "Days processed by the absent sweep, by result.",
			},
			[]string{"result"},
		),
		sweepRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "attendance",
				Name:      "sweep_rows_total",
				Help:      "Attendance rows written by the absent sweep, by status.",
			},
			[]string{"status"},
		),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.qrScans,
		m.leaveDecisions,
		m.sweepRuns,
		m.sweepRows,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, took time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(took.Seconds())
}

// QRScan counts a scan by its result: check_in, check_out or the rejection reason.
// The domain counters are no-ops on a nil *Metrics.
func (m *Metrics) QRScan(result string) {
	if m == nil {
		return
	}
	m.qrScans.WithLabelValues(result).Inc()
}

func (m *Metrics) LeaveDecision(stage, outcome string) {
	if m == nil {
		return
	}
	m.leaveDecisions.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) Sweep(results ...attendance.SweepResult) {
	if m == nil {
		return
	}
	for _, res := range results {
		if res.Skipped != "" {
			m.sweepRuns.WithLabelValues("skipped_" + res.Skipped).Inc()
			continue
		}
		m.sweepRuns.WithLabelValues("swept").Inc()
		m.sweepRows.WithLabelValues(string(attendance.StatusAbsent)).Add(float64(res.Absent))
		m.sweepRows.WithLabelValues(string(attendance.StatusOnLeave)).Add(float64(res.OnLeave))
	}
}
