package statemachine

// Key identifies a single (from, to) transition.
type Key[S State] struct {
	From S
	To   S
}

// Rule declares that any of its source states may move to its target state,
// optionally through a handler implementing Guard, Handler or both.
// A rule with several sources is shorthand for one rule per source.
type Rule[S State] struct {
	from    []S
	to      S
	handler any
}

// RuleOption configures a single rule.
type RuleOption func(*ruleConfig)

type ruleConfig struct {
	handler any
}

// WithHandler attaches a guard and/or handler to a rule. The value must implement
// Guard[E], Handler[E] or both for the entity type of the machine it is registered with.
func WithHandler(h any) RuleOption {
	return func(cfg *ruleConfig) {
		cfg.handler = h
	}
}

// NewRule creates a rule. Duplicate sources are dropped, order is preserved.
// An empty source list is reported when the rule is registered with a machine type.
func NewRule[S State](from []S, to S, opts ...RuleOption) Rule[S] {
	cfg := &ruleConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	sources := make([]S, 0, len(from))
	seen := make(map[S]struct{}, len(from))
	for _, s := range from {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sources = append(sources, s)
	}

	return Rule[S]{from: sources, to: to, handler: cfg.handler}
}

// From returns the source states of the rule.
func (r Rule[S]) From() []S {
	out := make([]S, len(r.from))
	copy(out, r.from)
	return out
}

// To returns the target state of the rule.
func (r Rule[S]) To() S {
	return r.to
}

// Handler returns the attached handler or nil.
func (r Rule[S]) Handler() any {
	return r.handler
}

// Keys returns every (from, to) pair covered by the rule.
func (r Rule[S]) Keys() []Key[S] {
	keys := make([]Key[S], 0, len(r.from))
	for _, f := range r.from {
		keys = append(keys, Key[S]{From: f, To: r.to})
	}
	return keys
}

// Covers reports whether the rule permits moving from one state to another.
func (r Rule[S]) Covers(from, to S) bool {
	if r.to != to {
		return false
	}
	for _, f := range r.from {
		if f == from {
			return true
		}
	}
	return false
}
