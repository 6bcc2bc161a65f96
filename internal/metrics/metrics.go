// Package metrics exposes Prometheus instrumentation for the council
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/council-mode/council/internal/core"
)

// Recorder implements council.DispatchObserver and records trigger
// decisions. All collectors are registered on the registry passed to
// NewRecorder.
type Recorder struct {
	dispatchDuration prometheus.Histogram
	dispatchOutcomes *prometheus.CounterVec
	modelCalls       *prometheus.CounterVec
	modelDuration    *prometheus.HistogramVec
	triggerReasons   *prometheus.CounterVec
}

// NewRecorder builds a recorder and registers its collectors.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "council",
			Name:      "dispatch_duration_seconds",
			Help:      "Wall-clock duration of full council dispatches.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 15, 30, 60},
		}),
		dispatchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "council",
			Name:      "dispatch_outcomes_total",
			Help:      "Dispatches by outcome (full, partial, empty).",
		}, []string{"outcome"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "council",
			Name:      "model_calls_total",
			Help:      "Per-model calls by terminal status.",
		}, []string{"model", "status"}),
		modelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "council",
			Name:      "model_call_duration_seconds",
			Help:      "Per-model call latency.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
		}, []string{"model"}),
		triggerReasons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "council",
			Name:      "trigger_decisions_total",
			Help:      "Trigger evaluations by decision reason.",
		}, []string{"reason", "triggered"}),
	}

	reg.MustRegister(
		r.dispatchDuration,
		r.dispatchOutcomes,
		r.modelCalls,
		r.modelDuration,
		r.triggerReasons,
	)
	return r
}

// ObserveModelCall records one terminal per-model call.
func (r *Recorder) ObserveModelCall(model string, status core.ResponseStatus, latency time.Duration) {
	r.modelCalls.WithLabelValues(model, string(status)).Inc()
	r.modelDuration.WithLabelValues(model).Observe(latency.Seconds())
}

// ObserveDispatch records one completed dispatch.
func (r *Recorder) ObserveDispatch(latency time.Duration, successes, failures int) {
	r.dispatchDuration.Observe(latency.Seconds())

	outcome := "full"
	switch {
	case successes == 0:
		outcome = "empty"
	case failures > 0:
		outcome = "partial"
	}
	r.dispatchOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveTrigger records one trigger evaluation.
func (r *Recorder) ObserveTrigger(reason string, triggered bool) {
	label := "false"
	if triggered {
		label = "true"
	}
	r.triggerReasons.WithLabelValues(reason, label).Inc()
}
