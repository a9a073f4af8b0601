package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsProcessedTotal, jobsInFlight, jobsRejectedTotal) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tutor_jobs_processed_total",
		Help: "Total number of tutor jobs finished, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var jobsInFlight = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "tutor_jobs_in_flight",
		Help: "Jobs currently owned by a runner.",
	},
)

var jobsRejectedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tutor_jobs_rejected_total",
		Help: "Submissions rejected because the worker queue was saturated.",
	},
)

func IncJob(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func JobStarted()  { jobsInFlight.Inc() }
func JobFinished() { jobsInFlight.Dec() }
func JobRejected() { jobsRejectedTotal.Inc() }
