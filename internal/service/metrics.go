package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_completed_total",
			Help: "Payment completions by resulting unlock status",
		},
		[]string{"status"},
	)
	BonusesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bonuses_evaluated_total",
			Help: "Bonus evaluations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	PointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Points credited to the ledger by source",
		},
		[]string{"source"},
	)
	BalanceDrift = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_balance_drift_total",
			Help: "Profiles whose cached balance differed from the ledger sum",
		},
	)
)

func init() {
	prometheus.MustRegister(PaymentsTotal)
	prometheus.MustRegister(BonusesTotal)
	prometheus.MustRegister(PointsAwarded)
	prometheus.MustRegister(BalanceDrift)
}
