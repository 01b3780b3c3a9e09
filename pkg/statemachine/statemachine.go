package statemachine

import "context"

// State is a single value of a closed enumeration governed by a state machine.
// Name is the symbolic name, Value is the raw value written to storage.
type State interface {
	comparable
	Name() string
	Value() string
}

// Entity owns the attribute a state machine governs and knows how to persist itself.
type Entity interface {
	Attribute(name string) string
	SetAttribute(name, value string)
	Persist(ctx context.Context) error
}

// Guard vetoes a declared transition based on the entity. Guards must not mutate anything:
// they run on every permission check, not only when a transition is applied.
type Guard[E Entity] interface {
	IsAllowed(ctx context.Context, entity E) bool
}

// Handler performs the whole transition effect in place of the default
// set-attribute-and-persist behaviour.
type Handler[E Entity] interface {
	Apply(ctx context.Context, entity E) error
}

// GuardFunc adapts a plain function to the Guard interface.
type GuardFunc[E Entity] func(ctx context.Context, entity E) bool

func (f GuardFunc[E]) IsAllowed(ctx context.Context, entity E) bool {
	return f(ctx, entity)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc[E Entity] func(ctx context.Context, entity E) error

func (f HandlerFunc[E]) Apply(ctx context.Context, entity E) error {
	return f(ctx, entity)
}

// Observer is notified about transition outcomes after they are known.
// States are passed by symbolic name. Calls are synchronous and happen on the
// caller's goroutine.
type Observer interface {
	TransitionApplied(ctx context.Context, machine, from, to string)
	TransitionRejected(ctx context.Context, machine, from, to string)
}

// StringState provides a simple string-based state for cases where the symbolic
// name and the stored value are the same.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

func (s StringState) Value() string {
	return string(s)
}
