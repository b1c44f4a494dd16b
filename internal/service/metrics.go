package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts facade operations by outcome. A nil *Metrics is a no-op so
// tests can run without a registry.
type Metrics struct {
	setupRequests  *prometheus.CounterVec
	issuances      *prometheus.CounterVec
	stageFailures  *prometheus.CounterVec
	balanceLookups *prometheus.CounterVec
}

// NewMetrics registers the facade metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		setupRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mintd_setup_requests_total",
			Help: "Account setup requests by outcome.",
		}, []string{"status"}),
		issuances: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mintd_issuances_total",
			Help: "Issuance workflow runs by outcome.",
		}, []string{"status"}),
		stageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mintd_issuance_stage_failures_total",
			Help: "Issuance failures by workflow stage.",
		}, []string{"stage"}),
		balanceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mintd_balance_lookups_total",
			Help: "Balance lookups by outcome.",
		}, []string{"status"}),
	}
}

func (m *Metrics) observeSetup(status Status) {
	if m != nil {
		m.setupRequests.WithLabelValues(string(status)).Inc()
	}
}

func (m *Metrics) observeIssuance(status Status, failedStage string) {
	if m == nil {
		return
	}
	m.issuances.WithLabelValues(string(status)).Inc()
	if failedStage != "" {
		m.stageFailures.WithLabelValues(failedStage).Inc()
	}
}

func (m *Metrics) observeBalanceLookup(status Status) {
	if m != nil {
		m.balanceLookups.WithLabelValues(string(status)).Inc()
	}
}
