// Package metrics exposes counters for the accounting engine. The
// reconciler binary serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_onchain_payments_total",
		Help: "On-chain payments settled, labeled by kind (onchain, on_us)",
	}, []string{"kind"})

	PaymentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_onchain_payment_failures_total",
		Help: "Payment attempts that returned an error before settling",
	})

	ReceiptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_onchain_receipts_total",
		Help: "Confirmed incoming transactions credited to accounts",
	})

	ReimbursementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_fee_reimbursements_total",
		Help: "Fee reimbursement entries committed",
	})

	RewardsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_onboarding_rewards_total",
		Help: "Onboarding rewards paid out",
	})

	AttributionAnomaliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_attribution_anomalies_total",
		Help: "Receipts skipped because attributed value exceeded the transaction total",
	})

	LiquidityAlarmsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_node_liquidity_alarms_total",
		Help: "Payments rejected because the node lacked on-chain funds",
	})
)
