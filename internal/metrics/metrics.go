package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wildenergy_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wildenergy_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wildenergy_registrations_total",
			Help: "Total number of course registrations",
		},
		[]string{"status"},
	)

	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wildenergy_cancellations_total",
			Help: "Total number of registration cancellations",
		},
		[]string{"forfeited"},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wildenergy_checkins_total",
			Help: "Total number of QR check-in scans",
		},
		[]string{"result"},
	)

	CheckOutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wildenergy_checkouts_total",
			Help: "Total number of reversed check-ins",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wildenergy_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wildenergy_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wildenergy_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"plan"},
	)

	SessionsRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wildenergy_sessions_remaining",
			Help: "Sessions remaining on a group balance",
		},
		[]string{"subscription_id", "group"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRegistration(status string) {
	RegistrationsTotal.WithLabelValues(status).Inc()
}

func RecordCancellation(forfeited bool) {
	label := "false"
	if forfeited {
		label = "true"
	}
	CancellationsTotal.WithLabelValues(label).Inc()
}

func RecordCheckIn(result string) {
	CheckInsTotal.WithLabelValues(result).Inc()
}

func RecordCheckOut() {
	CheckOutsTotal.Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordSubscription(plan string) {
	SubscriptionsCreatedTotal.WithLabelValues(plan).Inc()
}

func SetSessionsRemaining(subscriptionID, group string, remaining float64) {
	SessionsRemaining.WithLabelValues(subscriptionID, group).Set(remaining)
}

func SetEmailQueueLength(length float64) {
	EmailQueueLength.Set(length)
}
