package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/vet-appointment-scheduling/internal/appointment"
	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
)

type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	OperationsTotal  *prometheus.CounterVec
	LockWaitExceeded prometheus.Counter
}

// NewCollector registers on its own registry, so several collectors can live
// in one process (tests).
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "operations_total",
			Help:      "Scheduler operations by operation and outcome (ok or error kind).",
		}, []string{"operation", "outcome"}),

		LockWaitExceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "lock_wait_exceeded_total",
			Help:      "Operations rejected because a scheduling lock could not be taken in time.",
		}),
	}
}

// ObserveOperation records a scheduler outcome.
func (c *Collector) ObserveOperation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
		if errors.Is(err, appointment.ErrSchedulingUnavailable) {
			c.LockWaitExceeded.Inc()
		}
	}
	c.OperationsTotal.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
