package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	pageEvaluationsTotal  *prometheus.CounterVec
	mailDeliveriesTotal   *prometheus.CounterVec
	exportDurationSeconds *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coloringbook_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coloringbook_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coloringbook_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coloringbook_submissions_total",
			Help: "Subject submissions handled, by outcome.",
		}, []string{"status"})

		pageEvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coloringbook_page_evaluations_total",
			Help: "Pages evaluated, by correctness.",
		}, []string{"result"})

		mailDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "coloringbook_mail_deliveries_total",
			Help: "Result mail delivery attempts, by outcome.",
		}, []string{"status"})

		exportDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coloringbook_export_duration_seconds",
			Help:    "Time spent building CSV exports.",
			Buckets: prometheus.DefBuckets,
		}, []string{"export"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			pageEvaluationsTotal,
			mailDeliveriesTotal,
			exportDurationSeconds,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions counts stored, duplicate and failed subject submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// PageEvaluations counts evaluated pages.
func PageEvaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return pageEvaluationsTotal
}

// MailDeliveries counts mail delivery attempts.
func MailDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return mailDeliveriesTotal
}

// ExportDuration observes how long CSV exports take.
func ExportDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return exportDurationSeconds
}

// MetricsHandler serves the default registry. A collector failing to
// gather does not hide the others.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}))
}
