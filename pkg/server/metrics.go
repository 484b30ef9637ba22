package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the server's prometheus collectors.
type Metrics struct {
	Decisions *prometheus.CounterVec
	Logins    *prometheus.CounterVec
}

// NewMetrics registers the server collectors with reg. Collectors already
// registered by an earlier server on the same registry are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "church",
			Subsystem: "permission",
			Name:      "decisions_total",
			Help:      "Authorization decisions by kind (check, page, navigation, gate) and outcome.",
		}, []string{"kind", "outcome"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "church",
			Subsystem: "authn",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
	m.Decisions = register(reg, m.Decisions)
	m.Logins = register(reg, m.Logins)

	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

// Outcome maps a decision to its metric label.
func Outcome(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
