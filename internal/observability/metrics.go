// internal/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pairingOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_pairing_operations_total",
		Help: "Device pairing operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	tokenDeductions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_token_deductions_total",
		Help: "Reward-token deduction attempts by outcome.",
	}, []string{"outcome"})

	activityAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tably_activity_appends_total",
		Help: "Activity ledger appends by outcome.",
	}, []string{"outcome"})
)

func RecordPairing(operation, outcome string) {
	pairingOps.WithLabelValues(operation, outcome).Inc()
}

func RecordDeduction(outcome string) {
	tokenDeductions.WithLabelValues(outcome).Inc()
}

func RecordActivityAppend(outcome string) {
	activityAppends.WithLabelValues(outcome).Inc()
}
