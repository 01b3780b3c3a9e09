package statemachine

import (
	"log/slog"
)

// Option configures a machine type during construction.
type Option func(*config) error

type config struct {
	name      string
	rules     []any // Rule[S]; the state type is checked by New
	observers []Observer
	logger    *slog.Logger
	strict    bool
}

// WithName sets the machine type name used in logs, metrics and diagrams.
func WithName(name string) Option {
	return func(cfg *config) error {
		if name != "" {
			cfg.name = name
		}
		return nil
	}
}

// WithTransition declares a single from -> to rule.
func WithTransition[S State](from, to S, opts ...RuleOption) Option {
	return WithTransitionFrom([]S{from}, to, opts...)
}

// WithTransitionFrom declares a rule allowing any of the given states to move to the target.
func WithTransitionFrom[S State](from []S, to S, opts ...RuleOption) Option {
	return func(cfg *config) error {
		cfg.rules = append(cfg.rules, NewRule(from, to, opts...))
		return nil
	}
}

// WithRules appends pre-built rules in the given order. This is the natural target for a
// package-level function returning a machine type's rule list.
func WithRules[S State](rules ...Rule[S]) Option {
	return func(cfg *config) error {
		for _, r := range rules {
			cfg.rules = append(cfg.rules, r)
		}
		return nil
	}
}

// WithObserver registers an observer notified about every transition outcome.
func WithObserver(o Observer) Option {
	return func(cfg *config) error {
		if o != nil {
			cfg.observers = append(cfg.observers, o)
		}
		return nil
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithStrictRules turns rules shadowed by an earlier declaration of the same
// transition into a construction error instead of a logged warning.
func WithStrictRules() Option {
	return func(cfg *config) error {
		cfg.strict = true
		return nil
	}
}
