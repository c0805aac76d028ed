package observability

import (
	"context"

	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "asyncfetch"

// Metrics records call outcomes as Prometheus collectors.
type Metrics struct {
	calls       *prometheus.CounterVec
	inFlight    prometheus.Gauge
	duration    *prometheus.HistogramVec
	passthrough prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total number of completed endpoint calls",
			},
			[]string{"verb", "endpoint", "outcome"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calls_in_flight",
			Help:      "Number of endpoint calls awaiting a response",
		}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Duration of endpoint calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"verb", "endpoint"},
		),
		passthrough: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passthrough_total",
			Help:      "Total number of call envelopes forwarded unchanged after failing validation",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.inFlight, m.duration, m.passthrough)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	done := func(outcome string) func(context.Context, *domain.CallEvent) {
		return func(_ context.Context, e *domain.CallEvent) {
			m.inFlight.Dec()
			m.calls.WithLabelValues(e.Token.Verb, e.Token.Endpoint, outcome).Inc()
			m.duration.WithLabelValues(e.Token.Verb, e.Token.Endpoint).Observe(e.Duration.Seconds())
		}
	}
	return domain.Hooks{
		OnRequest: func(context.Context, *domain.CallEvent) {
			m.inFlight.Inc()
		},
		OnSuccess: done("success"),
		OnFailure: done("failure"),
		OnPassthrough: func(context.Context, *domain.CallEvent) {
			m.passthrough.Inc()
		},
	}
}
