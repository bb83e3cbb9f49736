package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_leads_created_total",
			Help: "Total number of leads created",
		},
	)

	callsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_calls_logged_total",
			Help: "Total number of call outcomes recorded",
		},
		[]string{"connected"},
	)

	statusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_status_changes_total",
			Help: "Total number of explicit lead status changes",
		},
		[]string{"status"},
	)

	policyDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_policy_denials_total",
			Help: "Total number of requests denied by the authorization policy",
		},
		[]string{"operation"},
	)

	eventSinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_event_sink_errors_total",
			Help: "Total number of lead events a sink failed to deliver",
		},
		[]string{"sink"},
	)

	wsClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_ws_clients",
			Help: "Number of connected dashboard websocket clients",
		},
	)
)

func ObserveRequest(method, path string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

func RequestStarted() {
	activeRequests.Inc()
}

func RequestFinished() {
	activeRequests.Dec()
}

func RecordLeadCreated() {
	leadsCreated.Inc()
}

func RecordCallLogged(connected bool) {
	callsLogged.WithLabelValues(strconv.FormatBool(connected)).Inc()
}

func RecordStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

func RecordPolicyDenial(operation string) {
	policyDenials.WithLabelValues(operation).Inc()
}

func RecordSinkError(sink string) {
	eventSinkErrors.WithLabelValues(sink).Inc()
}

func WSClientConnected() {
	wsClients.Inc()
}

func WSClientDisconnected() {
	wsClients.Dec()
}
