// Package metrics turns service use-case events into Prometheus series.
package metrics

import (
	"context"
	"fmt"

	"github.com/alexanderramin/discipulado/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "discipulado"

// Observer implements service.UseCaseObserver. Each Observer owns its
// registry so tests and commands never share global state.
type Observer struct {
	reg *prometheus.Registry

	useCases    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	attempts    *prometheus.CounterVec
	escalations *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func New() *Observer {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Observer{
		reg: reg,
		useCases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "use_cases_total",
			Help:      "Service use cases by name and result (ok, rejected, error).",
		}, []string{"use_case", "result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "use_case_duration_seconds",
			Help:      "Service use case latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_attempts_total",
			Help:      "Recorded contact attempts by outcome.",
		}, []string{"outcome"}),
		escalations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "escalations_total",
			Help:      "Contact attempts that raised a case's criticality, by new tier.",
		}, []string{"criticality"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "case_transitions_total",
			Help:      "Case status changes.",
		}, []string{"from", "to"}),
	}
}

func (o *Observer) ObserveUseCase(_ context.Context, e service.UseCaseEvent) {
	o.useCases.WithLabelValues(e.Name, result(e)).Inc()
	o.duration.WithLabelValues(e.Name).Observe(e.Duration.Seconds())
	if !e.Success {
		return
	}

	if e.Name == "attempt-record" {
		o.attempts.WithLabelValues(field(e, "outcome")).Inc()
		if escalated, _ := e.Fields["escalated"].(bool); escalated {
			o.escalations.WithLabelValues(field(e, "criticality")).Inc()
		}
	}
	if from, to := field(e, "from_status"), field(e, "status"); from != "" && to != "" && from != to {
		o.transitions.WithLabelValues(from, to).Inc()
	}
}

// Registry exposes the collectors, e.g. for a textfile flush.
func (o *Observer) Registry() *prometheus.Registry {
	return o.reg
}

// WriteTextfile writes the current values in the node-exporter textfile
// format. The write is atomic.
func (o *Observer) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, o.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func result(e service.UseCaseEvent) string {
	switch {
	case e.Err == nil:
		return "ok"
	case service.IsBusinessError(e.Err):
		return "rejected"
	default:
		return "error"
	}
}

func field(e service.UseCaseEvent, key string) string {
	v, _ := e.Fields[key].(string)
	return v
}
