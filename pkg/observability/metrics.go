package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/sparkbridge/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the lifecycle hooks.
type Metrics struct {
	Directives  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Transitions *prometheus.CounterVec
	Faults      *prometheus.CounterVec
	Shutdowns   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Directives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkbridge_directives_total",
				Help: "Total number of directives dispatched to the remote session",
			},
			[]string{"kind", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sparkbridge_directive_duration_seconds",
				Help:    "Duration of directive dispatches",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"kind"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkbridge_session_transitions_total",
				Help: "Total number of session phase changes",
			},
			[]string{"from", "to"},
		),
		Faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkbridge_session_faults_total",
				Help: "Total number of sessions that entered the faulted phase",
			},
			[]string{"kind", "fatal"},
		),
		Shutdowns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sparkbridge_session_shutdowns_total",
				Help: "Total number of session shutdowns",
			},
			[]string{"restart"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Directives, m.Duration, m.Transitions, m.Faults, m.Shutdowns)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			m.Directives.WithLabelValues(string(e.Kind), string(e.Status)).Inc()
			m.Duration.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnFault: func(ctx context.Context, e *domain.FaultEvent) {
			m.Faults.WithLabelValues(string(e.Kind), strconv.FormatBool(e.Fatal)).Inc()
		},
		OnShutdown: func(ctx context.Context, e *domain.ShutdownEvent) {
			m.Shutdowns.WithLabelValues(strconv.FormatBool(e.Restart)).Inc()
		},
	}
}
