package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		stageTokensIn,
		stageTokensOut,
		stageLatencyMs,
	)
}

var (
	stageTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_stage_tokens_in",
			Help: "Sum of prompt (input) tokens per stage/provider/model.",
		},
		[]string{"stage", "provider", "model"},
	)

	stageTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_stage_tokens_out",
			Help: "Sum of completion (output) tokens per stage/provider/model.",
		},
		[]string{"stage", "provider", "model"},
	)

	stageLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tutor_stage_latency_ms",
			Help:    "Generation call latency per stage in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000, 60000},
		},
		[]string{"stage", "provider", "model", "success"},
	)
)

// ObserveStage records one generation call. tokensIn may be a tiktoken
// estimate when the provider reports no usage.
func ObserveStage(stage, provider, model string, tokensIn, tokensOut, latencyMs int, success bool) {
	lbl := []string{norm(stage), norm(provider), norm(model)}
	stageTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	stageTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
	stageLatencyMs.WithLabelValues(norm(stage), norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
