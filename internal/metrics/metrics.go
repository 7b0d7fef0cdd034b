// Package metrics provides Prometheus metrics for researchlight.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SummariesTotal counts produced summaries by mode.
	SummariesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "researchlight",
			Name:      "summaries_total",
			Help:      "Total number of summaries produced",
		},
		[]string{"mode"},
	)

	// ChunksDroppedTotal counts chunks whose abstractive summary failed.
	ChunksDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "researchlight",
			Name:      "chunks_dropped_total",
			Help:      "Total number of chunks dropped after a summarization failure",
		},
	)

	// PagesSkippedTotal counts PDF pages that yielded no text.
	PagesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "researchlight",
			Name:      "pages_skipped_total",
			Help:      "Total number of PDF pages skipped during extraction",
		},
	)

	// AnswersTotal counts question answering requests by outcome.
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "researchlight",
			Name:      "answers_total",
			Help:      "Total number of questions answered",
		},
		[]string{"status"},
	)

	// ModelCallDuration measures summarization model calls.
	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "researchlight",
			Name:      "model_call_duration_seconds",
			Help:      "Duration of summarization model calls in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"model", "status"},
	)
)

// ObserveModelCall records one summarization model call.
func ObserveModelCall(model string, d time.Duration, err error) {
	ModelCallDuration.WithLabelValues(model, status(err)).Observe(d.Seconds())
}

// RecordSummary records one produced summary.
func RecordSummary(mode string) {
	SummariesTotal.WithLabelValues(mode).Inc()
}

// RecordAnswer records one answered (or failed) question.
func RecordAnswer(err error) {
	AnswersTotal.WithLabelValues(status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
