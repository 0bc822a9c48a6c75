package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsInitiatedTotal counts signed payment intents handed to the gateway
	PaymentsInitiatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_initiated_total",
			Help: "Total number of payment intents created",
		},
	)

	// CallbackVerificationsTotal counts gateway callback signature checks by result
	CallbackVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callback_verifications_total",
			Help: "Total number of gateway callback verifications by result",
		},
		[]string{"result"},
	)

	// OrdersUpsertedTotal counts order reconciliation writes by outcome
	OrdersUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_upserted_total",
			Help: "Total number of order upserts by outcome",
		},
		[]string{"outcome"},
	)

	// OTPRequestsTotal counts OTP issue requests
	OTPRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "otp_requests_total",
			Help: "Total number of OTPs issued",
		},
	)
)

// RecordCallbackVerification records a callback signature check
func RecordCallbackVerification(verified bool) {
	result := "rejected"
	if verified {
		result = "verified"
	}
	CallbackVerificationsTotal.WithLabelValues(result).Inc()
}
