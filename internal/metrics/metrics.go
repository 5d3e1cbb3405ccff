// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "backoffice"

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Sessions held by the in-memory session store",
	})

	CreditsSpent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_credits_spent_total",
		Help:      "AI credits consumed by prompt runs",
	})

	CreditSpendRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_credit_spend_rejected_total",
		Help:      "Spend attempts refused for insufficient balance",
	})

	CreditsPurchased = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ai_credits_purchased_total",
		Help:      "AI credits granted from confirmed payments",
	})

	PaymentIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_intents_total",
			Help:      "Payment intent operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}
