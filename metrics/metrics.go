// Package metrics exposes retry activity as Prometheus metrics. Attach the
// Observer to a retrier to count attempts by scope and outcome, track the
// delays it schedules, and count exhausted or canceled invocations.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/limco/steadfast/observe"
)

// Observer implements observe.Observer over Prometheus collectors.
type Observer struct {
	attempts *prometheus.CounterVec
	delays   *prometheus.HistogramVec
	finished *prometheus.CounterVec
}

// NewObserver creates an Observer and registers its collectors with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "steadfast",
				Name:      "attempts_total",
				Help:      "Attempts executed, by retry scope and outcome.",
			},
			[]string{"scope", "profile", "outcome"},
		),
		delays: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "steadfast",
				Name:      "retry_delay_seconds",
				Help:      "Delays scheduled before retry attempts.",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 180, 240, 300},
			},
			[]string{"scope", "profile"},
		),
		finished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "steadfast",
				Name:      "invocations_total",
				Help:      "Finished invocations, by retry scope and status.",
			},
			[]string{"scope", "profile", "status"},
		),
	}
	if reg != nil {
		reg.MustRegister(o.attempts, o.delays, o.finished)
	}
	return o
}

func (o *Observer) OnAttempt(_ context.Context, a observe.Attempt) {
	outcome := "success"
	if a.Record.Err != nil {
		outcome = a.Record.Kind.String()
	}
	o.attempts.WithLabelValues(a.Scope.String(), a.ProfileName, outcome).Inc()

	if a.Record.NextDelay > 0 {
		o.delays.WithLabelValues(a.Scope.String(), a.ProfileName).Observe(a.Record.NextDelay.Seconds())
	}
}

func (o *Observer) OnSuccess(_ context.Context, s observe.Summary) {
	o.finished.WithLabelValues(s.Scope.String(), s.ProfileName, "succeeded").Inc()
}

func (o *Observer) OnFailure(_ context.Context, s observe.Summary) {
	status := "gave_up"
	if s.Canceled {
		status = "canceled"
	}
	o.finished.WithLabelValues(s.Scope.String(), s.ProfileName, status).Inc()
}
