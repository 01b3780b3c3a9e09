package statemachine

// Builder provides a fluent API for declaring a rule table.
//
//	rules := statemachine.NewBuilder[DocState]().
//		From(Draft).To(Pending).Add().
//		From(Pending).To(Approved).WithHandler(scoreGuard{}).Add().
//		Rules()
type Builder[S State] struct {
	rules       []Rule[S]
	currentFrom []S
	currentTo   S
	hasTo       bool
	handler     any
}

// NewBuilder creates a new rule builder.
func NewBuilder[S State]() *Builder[S] {
	return &Builder[S]{}
}

// From sets the source states of the current rule and discards any unfinished rule.
func (b *Builder[S]) From(states ...S) *Builder[S] {
	b.reset()
	b.currentFrom = append(b.currentFrom, states...)
	return b
}

// To sets the target state of the current rule.
func (b *Builder[S]) To(state S) *Builder[S] {
	b.currentTo = state
	b.hasTo = true
	return b
}

// WithHandler attaches a guard and/or handler to the current rule.
func (b *Builder[S]) WithHandler(h any) *Builder[S] {
	b.handler = h
	return b
}

// Add finalizes the current rule. A rule without a target is dropped;
// a rule without sources is kept so that New reports it.
func (b *Builder[S]) Add() *Builder[S] {
	if b.hasTo {
		b.rules = append(b.rules, NewRule(b.currentFrom, b.currentTo, WithHandler(b.handler)))
	}
	b.reset()
	return b
}

// Rules returns the declared rules in order.
func (b *Builder[S]) Rules() []Rule[S] {
	out := make([]Rule[S], len(b.rules))
	copy(out, b.rules)
	return out
}

// Option returns the declared rules as a construction option.
func (b *Builder[S]) Option() Option {
	return WithRules(b.Rules()...)
}

func (b *Builder[S]) reset() {
	var zero S
	b.currentFrom = nil
	b.currentTo = zero
	b.hasTo = false
	b.handler = nil
}
