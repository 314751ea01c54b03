package provision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes saga outcomes on the process registry.
type Metrics struct {
	ProvisionTotal       *prometheus.CounterVec
	CompensationFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProvisionTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: "provision",
			Name:      "saga_total",
			Help:      "Onboarding saga invocations by outcome.",
		}, []string{"outcome"}),
		CompensationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "platform",
			Subsystem: "provision",
			Name:      "compensation_failures_total",
			Help:      "Compensating actions that themselves failed and need manual reconciliation.",
		}, []string{"action"}),
	}
}
