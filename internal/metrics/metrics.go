package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encontra_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "encontra_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BillingEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encontra_billing_events_total",
			Help: "Total number of payment webhook events processed",
		},
		[]string{"event", "outcome"},
	)

	SubscriptionActivationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encontra_subscription_activations_total",
			Help: "Total number of subscriptions activated by paid events",
		},
	)

	PaymentLinksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encontra_payment_links_created_total",
			Help: "Total number of hosted payment links requested",
		},
	)

	SubscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encontra_subscriptions_expired_total",
			Help: "Total number of subscriptions demoted by the expiration sweep",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encontra_notifications_total",
			Help: "Total number of outbound Discord notifications",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "encontra_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)

	VerificationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encontra_verification_requests_total",
			Help: "Total number of identity verification requests",
		},
		[]string{"status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBillingEvent(event, outcome string) {
	BillingEventsTotal.WithLabelValues(event, outcome).Inc()
}

func RecordActivation() {
	SubscriptionActivationsTotal.Inc()
}

func RecordPaymentLink() {
	PaymentLinksCreatedTotal.Inc()
}

func RecordExpired(count int) {
	SubscriptionsExpiredTotal.Add(float64(count))
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}

func RecordVerificationRequest(status string) {
	VerificationRequestsTotal.WithLabelValues(status).Inc()
}
