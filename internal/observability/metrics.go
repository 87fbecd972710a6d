package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pto_purchases_total",
			Help: "Total purchase requests by payment method and outcome",
		},
		[]string{"method", "outcome"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pto_validation_failures_total",
			Help: "Purchase validation gate failures by rule",
		},
		[]string{"rule"},
	)

	PaymentCallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pto_payment_callbacks_total",
			Help: "Payment confirmations by result",
		},
		[]string{"result"},
	)

	MailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pto_mail_failures_total",
			Help: "Confirmation mails that failed to send",
		},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pto_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pto_outbox_lag_seconds",
			Help: "Lag of outbox publishing",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pto_rate_limit_exceeded_total",
			Help: "Total rate limited requests",
		},
	)
)
