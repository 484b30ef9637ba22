package diagnostics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/miguelmarques1/church-web/pkg/audit"
	"github.com/miguelmarques1/church-web/pkg/permission"
)

// Zap logs each gap at warn level.
func Zap(logger *zap.Logger) permission.Diagnostics {
	if logger == nil {
		return permission.NopDiagnostics
	}
	return permission.DiagnosticsFunc(func(gap permission.Gap) {
		logger.Warn("Permission configuration gap",
			zap.String("kind", string(gap.Kind)),
			zap.String("role", gap.Role),
			zap.String("resource", gap.Resource),
			zap.String("action", gap.Action),
			zap.String("detail", gap.String()))
	})
}

// Audit records each gap as an audit.GapEvent.
func Audit(logger *audit.Logger) permission.Diagnostics {
	if !logger.Enabled() {
		return permission.NopDiagnostics
	}
	return permission.DiagnosticsFunc(func(gap permission.Gap) {
		logger.Log(audit.GapEvent{
			Kind:        string(gap.Kind),
			Role:        gap.Role,
			Resource:    gap.Resource,
			Action:      gap.Action,
			Description: gap.String(),
		})
	})
}

// GapCounter counts configuration gaps for prometheus.
type GapCounter struct {
	gaps *prometheus.CounterVec
}

// Prometheus registers church_permission_config_gaps_total with reg. If an
// identical collector is already registered it is reused.
func Prometheus(reg prometheus.Registerer) (*GapCounter, error) {
	gaps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "church",
		Subsystem: "permission",
		Name:      "config_gaps_total",
		Help:      "Permission decisions that hit a role, resource or action missing from the table.",
	}, []string{"kind", "role", "resource"})

	if err := reg.Register(gaps); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		gaps = existing
	}
	return &GapCounter{gaps: gaps}, nil
}

// ConfigurationGap implements permission.Diagnostics.
func (c *GapCounter) ConfigurationGap(gap permission.Gap) {
	c.gaps.WithLabelValues(string(gap.Kind), gap.Role, gap.Resource).Inc()
}

// Multi reports each gap to every non-nil sink in order.
func Multi(sinks ...permission.Diagnostics) permission.Diagnostics {
	var live []permission.Diagnostics
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return permission.NopDiagnostics
	case 1:
		return live[0]
	}
	return permission.DiagnosticsFunc(func(gap permission.Gap) {
		for _, s := range live {
			s.ConfigurationGap(gap)
		}
	})
}
