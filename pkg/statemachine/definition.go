package statemachine

import (
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/statekit/pkg/logger"
)

const defaultName = "statemachine"

// Definition is a machine type: the closed set of states, the ordered rule table and
// the capabilities resolved from each rule's handler. It is built once, never mutated
// afterwards and may be shared by any number of machines and goroutines.
type Definition[E Entity, S State] struct {
	name      string
	enum      *Enum[S]
	rules     *RuleSet[S]
	guards    []Guard[E]   // indexed like rules; nil when the handler is not a guard
	handlers  []Handler[E] // indexed like rules; nil when the handler does not apply effects
	observers []Observer
	log       *slog.Logger
}

// New creates a machine type for entities of type E whose states are described by enum.
// Every declaration problem is reported here so that transition calls never fail
// because of a malformed rule table.
func New[E Entity, S State](enum *Enum[S], opts ...Option) (*Definition[E, S], error) {
	if enum == nil {
		return nil, &DeclarationError{Reason: ErrNilEnum, Rule: -1}
	}

	cfg := &config{
		name:   defaultName,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	rules := make([]Rule[S], 0, len(cfg.rules))
	for i, raw := range cfg.rules {
		r, ok := raw.(Rule[S])
		if !ok {
			return nil, &DeclarationError{
				Reason: ErrUnknownState,
				Rule:   i,
				Detail: fmt.Sprintf("rule is declared over %T", raw),
			}
		}
		if err := validateRule(enum, r, i); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	d := &Definition[E, S]{
		name:      cfg.name,
		enum:      enum,
		rules:     newRuleSet(rules),
		guards:    make([]Guard[E], len(rules)),
		handlers:  make([]Handler[E], len(rules)),
		observers: cfg.observers,
		log:       cfg.logger.With(logger.Machine(cfg.name)),
	}

	for i, r := range rules {
		if r.handler == nil {
			continue
		}
		g, isGuard := r.handler.(Guard[E])
		h, isHandler := r.handler.(Handler[E])
		if !isGuard && !isHandler {
			return nil, &DeclarationError{
				Reason: ErrInvalidHandler,
				Rule:   i,
				Detail: fmt.Sprintf("%T for entity %T", r.handler, *new(E)),
			}
		}
		if isGuard {
			d.guards[i] = g
		}
		if isHandler {
			d.handlers[i] = h
		}
	}

	for _, k := range d.rules.Shadowed() {
		if cfg.strict {
			return nil, &DeclarationError{
				Reason: ErrAmbiguousRule,
				Rule:   -1,
				Detail: k.From.Name() + " -> " + k.To.Name(),
			}
		}
		d.log.Warn("transition declared more than once, later rule is unreachable",
			logger.FromState(k.From.Name()),
			logger.ToState(k.To.Name()),
		)
	}

	return d, nil
}

// MustNew creates a machine type and panics on declaration errors,
// following SaasKit's fail-fast pattern for package-level declarations.
func MustNew[E Entity, S State](enum *Enum[S], opts ...Option) *Definition[E, S] {
	d, err := New[E](enum, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return d
}

func validateRule[S State](enum *Enum[S], r Rule[S], i int) error {
	if len(r.from) == 0 {
		return &DeclarationError{Reason: ErrEmptySource, Rule: i, Detail: "target " + r.to.Name()}
	}
	if !enum.Contains(r.to) {
		return &DeclarationError{Reason: ErrUnknownState, Rule: i, Detail: r.to.Name()}
	}
	for _, f := range r.from {
		if !enum.Contains(f) {
			return &DeclarationError{Reason: ErrUnknownState, Rule: i, Detail: f.Name()}
		}
	}
	return nil
}

// Name returns the machine type name.
func (d *Definition[E, S]) Name() string {
	return d.name
}

// Enum returns the state codec.
func (d *Definition[E, S]) Enum() *Enum[S] {
	return d.enum
}

// Rules returns the rule table.
func (d *Definition[E, S]) Rules() *RuleSet[S] {
	return d.rules
}

// Load materializes a machine from the raw value currently stored in the entity's attribute.
// It fails with an InvalidStateError when the stored value is not a declared state.
func (d *Definition[E, S]) Load(entity E, attribute string) (*Machine[E, S], error) {
	current, err := d.enum.Parse(entity.Attribute(attribute))
	if err != nil {
		return nil, fmt.Errorf("load %s.%s: %w", d.name, attribute, err)
	}
	return d.newMachine(entity, attribute, current), nil
}

// Wrap creates a machine for an entity whose current state is already known.
func (d *Definition[E, S]) Wrap(entity E, attribute string, current S) (*Machine[E, S], error) {
	if !d.enum.Contains(current) {
		return nil, &InvalidStateError{Raw: current.Value()}
	}
	return d.newMachine(entity, attribute, current), nil
}

func (d *Definition[E, S]) newMachine(entity E, attribute string, current S) *Machine[E, S] {
	return &Machine[E, S]{
		def:       d,
		entity:    entity,
		attribute: attribute,
		current:   current,
	}
}

// resolve returns the first declared rule for the transition together with its capabilities.
func (d *Definition[E, S]) resolve(from, to S) (rule Rule[S], guard Guard[E], handler Handler[E], ok bool) {
	i, ok := d.rules.lookup(from, to)
	if !ok {
		return rule, nil, nil, false
	}
	return d.rules.rules[i], d.guards[i], d.handlers[i], true
}
