package mcmc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	stageSeconds   *prometheus.HistogramVec
	sampleRetries  prometheus.Counter
	sampleFailures prometheus.Counter
	invalidShapes  prometheus.Counter
}

// newMetrics registers the pipeline collectors with reg. A nil reg leaves
// them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		stageSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hawkes_stage_duration_seconds",
			Help:    "Wall time of one pipeline stage, launch to synchronize.",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"stage"}),
		sampleRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "hawkes_gamma_sample_retries_total",
			Help: "Work items relaunched after reporting SAMPLE_FAILURE.",
		}),
		sampleFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "hawkes_gamma_sample_failures_total",
			Help: "Work items still failing after the last retry.",
		}),
		invalidShapes: f.NewCounter(prometheus.CounterOpts{
			Name: "hawkes_gamma_invalid_parameter_total",
			Help: "Work items rejected with INVALID_PARAMETER.",
		}),
	}
}
