package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	submissionsCreated   prometheus.Counter
	submissionsGraded    *prometheus.CounterVec
	uploadRejectedTotal  *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		submissionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submissions_created_total",
			Help: "Submission groups created by students.",
		})

		submissionsGraded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_graded_total",
			Help: "Grading actions applied, by resulting status.",
		}, []string{"status"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Uploads rejected during inspection or storage.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_duration_seconds",
			Help:    "Time spent inspecting and storing a single file.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			submissionsCreated,
			submissionsGraded,
			uploadRejectedTotal,
			uploadLatencySeconds,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// SubmissionsCreated counts stored submission groups.
func SubmissionsCreated() prometheus.Counter {
	RegisterMetrics()
	return submissionsCreated
}

// SubmissionsGraded counts grading actions by status.
func SubmissionsGraded() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsGraded
}

// UploadRejected counts rejected uploads by reason.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the per-file upload histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}
