package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "statekit"

// Observer counts transition outcomes per machine and state pair.
// It implements statemachine.Observer and can be shared by any number of machine types.
type Observer struct {
	applied  *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewObserver creates the counters and registers them with reg, or with the default
// registerer when reg is nil. Registering twice on the same registry reuses the
// collectors registered first.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	applied, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transitions_total",
			Help:      "Total number of applied state transitions",
		},
		[]string{"machine", "from", "to"},
	))
	if err != nil {
		return nil, err
	}

	rejected, err := register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transitions_rejected_total",
			Help:      "Total number of state transitions refused because no rule allowed them or a guard vetoed them",
		},
		[]string{"machine", "from", "to"},
	))
	if err != nil {
		return nil, err
	}

	return &Observer{applied: applied, rejected: rejected}, nil
}

// MustNewObserver is like NewObserver but panics on registration errors.
func MustNewObserver(reg prometheus.Registerer) *Observer {
	o, err := NewObserver(reg)
	if err != nil {
		panic(err)
	}
	return o
}

func (o *Observer) TransitionApplied(_ context.Context, machine, from, to string) {
	o.applied.WithLabelValues(machine, from, to).Inc()
}

func (o *Observer) TransitionRejected(_ context.Context, machine, from, to string) {
	o.rejected.WithLabelValues(machine, from, to).Inc()
}

// Handler exposes the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}
