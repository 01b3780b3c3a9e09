// Package statemachine governs the state attribute of a persisted entity.
//
// A machine type (Definition) is declared once from a closed set of states (Enum) and an
// ordered table of rules. Each rule allows one or more source states to move to a target
// state and may carry a handler value implementing one or both capabilities:
//
//  1. Guard – a read-only check that can veto a declared transition
//  2. Handler – the complete transition effect, replacing the default behaviour
//
// When no Handler is attached the default effect sets the governed attribute to the raw
// value of the target state and asks the entity to persist itself. A machine (Machine) is
// materialized per entity with Definition.Load, which parses the stored raw value.
//
// # Usage
//
//	type DocState string
//
//	func (s DocState) Name() string  { return string(s) }
//	func (s DocState) Value() string { return string(s) }
//
//	const (
//	    Draft    DocState = "draft"
//	    Pending  DocState = "pending"
//	    Approved DocState = "approved"
//	)
//
//	var docStates = statemachine.MustNewEnum(Draft, Pending, Approved)
//
//	var docMachine = statemachine.MustNew[*Document](docStates,
//	    statemachine.WithName("document"),
//	    statemachine.WithTransition(Draft, Pending),
//	    statemachine.WithTransition(Pending, Approved, statemachine.WithHandler(scoreGuard{})),
//	)
//
//	m, err := docMachine.Load(doc, "status")
//	if err != nil { /* InvalidStateError */ }
//	if err := m.TransitionTo(ctx, Pending); err != nil { /* ... */ }
//
// # Rule lookup
//
// Rules are matched in declaration order and the first rule covering a (from, to) pair wins.
// Declaring the same pair twice makes the later rule unreachable; New logs a warning for each
// such pair, or fails with ErrAmbiguousRule when WithStrictRules is given.
//
// # Error Handling
//
//	if statemachine.IsTransitionNotAllowedError(err) { /* not declared or vetoed */ }
//	if errors.Is(err, statemachine.ErrInvalidState) { /* stored value is not a state */ }
//
// Errors returned by Entity.Persist and by handlers are passed through unchanged.
//
// # Concurrency
//
// Definitions are immutable and safe to share. Machines do no locking; two concurrent
// transitions of the same entity must be resolved by its storage (see the store packages,
// which use optimistic versioning).
package statemachine
