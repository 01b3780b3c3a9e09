package statemachine

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/statekit/pkg/logger"
)

// Machine governs one attribute of one entity. It is created on load and discarded
// with the entity; it holds no locks, so concurrent transitions of the same entity
// must be arbitrated by the entity's storage.
type Machine[E Entity, S State] struct {
	def       *Definition[E, S]
	entity    E
	attribute string
	current   S
}

// Current returns the current state.
func (m *Machine[E, S]) Current() S {
	return m.current
}

// Is reports whether the machine is in the given state.
func (m *Machine[E, S]) Is(state S) bool {
	return m.current == state
}

// Value returns the raw value of the current state.
func (m *Machine[E, S]) Value() string {
	return m.def.enum.Format(m.current)
}

// Name returns the symbolic name of the current state.
func (m *Machine[E, S]) Name() string {
	return m.current.Name()
}

// Entity returns the governed entity.
func (m *Machine[E, S]) Entity() E {
	return m.entity
}

// Attribute returns the name of the governed attribute.
func (m *Machine[E, S]) Attribute() string {
	return m.attribute
}

// Definition returns the machine type.
func (m *Machine[E, S]) Definition() *Definition[E, S] {
	return m.def
}

// CanTransitionTo reports whether a transition to target is declared and, when the rule
// carries a guard, whether the guard currently allows it. It has no side effects.
func (m *Machine[E, S]) CanTransitionTo(ctx context.Context, target S) bool {
	allowed, _ := m.check(ctx, target)
	return allowed
}

// check returns whether the transition is allowed and whether a rule exists at all.
func (m *Machine[E, S]) check(ctx context.Context, target S) (allowed, declared bool) {
	_, guard, _, ok := m.def.resolve(m.current, target)
	if !ok {
		return false, false
	}
	if guard != nil {
		return guard.IsAllowed(ctx, m.entity), true
	}
	return true, true
}

// TransitionTo moves the entity to target. When the matching rule has a Handler it is
// the whole effect; otherwise the attribute is set and the entity persisted.
// A TransitionNotAllowedError is returned when the transition is not permitted.
// Storage errors are returned unchanged and leave the attribute as it was.
func (m *Machine[E, S]) TransitionTo(ctx context.Context, target S) error {
	from := m.current

	allowed, declared := m.check(ctx, target)
	if !allowed {
		m.notifyRejected(ctx, from, target)
		return NewErrTransitionNotAllowed(from.Name(), target.Name(), declared)
	}

	_, _, handler, _ := m.def.resolve(from, target)
	if handler != nil {
		if err := handler.Apply(ctx, m.entity); err != nil {
			return err
		}
		// The handler owns whatever it wrote; re-read the state from the entity.
		current, err := m.def.enum.Parse(m.entity.Attribute(m.attribute))
		if err != nil {
			return fmt.Errorf("refresh %s.%s after handler: %w", m.def.name, m.attribute, err)
		}
		m.current = current
		m.notifyApplied(ctx, from, current)
		return nil
	}

	previous := m.entity.Attribute(m.attribute)
	m.entity.SetAttribute(m.attribute, m.def.enum.Format(target))
	if err := m.entity.Persist(ctx); err != nil {
		m.entity.SetAttribute(m.attribute, previous)
		m.def.log.ErrorContext(ctx, "failed to persist state transition",
			logger.Attribute(m.attribute),
			logger.FromState(from.Name()),
			logger.ToState(target.Name()),
			logger.Error(err),
		)
		return err
	}

	m.current = target
	m.notifyApplied(ctx, from, target)
	return nil
}

// AllowedTransitions returns every state the machine may currently move to,
// in rule declaration order.
func (m *Machine[E, S]) AllowedTransitions(ctx context.Context) []S {
	var out []S
	seen := make(map[S]struct{})
	for _, r := range m.def.rules.From(m.current) {
		if _, ok := seen[r.to]; ok {
			continue
		}
		seen[r.to] = struct{}{}
		if m.CanTransitionTo(ctx, r.to) {
			out = append(out, r.to)
		}
	}
	return out
}

func (m *Machine[E, S]) notifyApplied(ctx context.Context, from, to S) {
	m.def.log.DebugContext(ctx, "state transition applied",
		logger.Attribute(m.attribute),
		logger.FromState(from.Name()),
		logger.ToState(to.Name()),
	)
	for _, o := range m.def.observers {
		o.TransitionApplied(ctx, m.def.name, from.Name(), to.Name())
	}
}

func (m *Machine[E, S]) notifyRejected(ctx context.Context, from, to S) {
	for _, o := range m.def.observers {
		o.TransitionRejected(ctx, m.def.name, from.Name(), to.Name())
	}
}

func (m *Machine[E, S]) String() string {
	return m.current.Name()
}
