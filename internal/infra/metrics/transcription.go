package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(transcribeLatencyMs) }

var transcribeLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "tutor_transcribe_latency_ms",
		Help:    "Transcription call latency distribution in milliseconds.",
		Buckets: []float64{500, 1000, 2500, 5000, 10000, 30000, 60000, 120000, 300000},
	},
	[]string{"success"},
)

func ObserveTranscription(latencyMs int, success bool) {
	transcribeLatencyMs.WithLabelValues(strconv.FormatBool(success)).Observe(float64(latencyMs))
}
