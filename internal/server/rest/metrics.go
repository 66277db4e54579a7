package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the auth counters exposed on /metrics. Each Metrics owns
// its registry so servers built in tests never collide.
type Metrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ats",
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Authentication and session events by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(events)

	return &Metrics{registry: reg, events: events}
}

// Observe counts one operation with an outcome derived from err.
func (m *Metrics) Observe(operation string, err error) {
	m.events.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, common.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, common.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
