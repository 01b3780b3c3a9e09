// Package metrics exports Prometheus counters for state transitions.
//
//	reg := prometheus.NewRegistry()
//	obs := metrics.MustNewObserver(reg)
//	def := statemachine.MustNew[*record.Record](states, statemachine.WithObserver(obs))
//	http.Handle("/metrics", metrics.Handler(reg))
//
// Exported series:
//
//	statekit_transitions_total{machine,from,to}
//	statekit_transitions_rejected_total{machine,from,to}
package metrics
