package statemachine

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrInvalidState         = errors.New("invalid state")
)

// Declaration errors are returned by New and NewEnum, never by a transition call.
var (
	ErrNilEnum        = errors.New("state enum cannot be nil")
	ErrNoStates       = errors.New("at least one state must be declared")
	ErrDuplicateState = errors.New("duplicate state")
	ErrUnknownState   = errors.New("rule references an undeclared state")
	ErrEmptySource    = errors.New("rule must have at least one source state")
	ErrInvalidHandler = errors.New("rule handler implements neither Guard nor Handler")
	ErrAmbiguousRule  = errors.New("more than one rule declared for the same transition")
)

// TransitionNotAllowedError is returned by TransitionTo when no rule covers the
// requested transition or the rule's guard rejected it. The entity is left untouched.
type TransitionNotAllowedError struct {
	From string
	To   string
	// Rejected is true when a rule exists but its guard vetoed the transition.
	Rejected bool
}

func (e *TransitionNotAllowedError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("transition from state '%s' to '%s' was rejected by guard", e.From, e.To)
	}
	return fmt.Sprintf("no transition allowed from state '%s' to '%s'", e.From, e.To)
}

func (e *TransitionNotAllowedError) Is(target error) bool {
	return target == ErrTransitionNotAllowed
}

func NewErrTransitionNotAllowed(from, to string, rejected bool) *TransitionNotAllowedError {
	return &TransitionNotAllowedError{
		From:     from,
		To:       to,
		Rejected: rejected,
	}
}

// InvalidStateError is returned when a persisted raw value does not map to a declared state.
type InvalidStateError struct {
	Raw string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state: raw value %s is not declared", quote(e.Raw))
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// DeclarationError describes a problem with a machine type's declaration.
type DeclarationError struct {
	Reason error
	// Rule is the zero-based index of the offending rule, or -1.
	Rule   int
	Detail string
}

func (e *DeclarationError) Error() string {
	msg := "invalid state machine declaration: " + e.Reason.Error()
	if e.Rule >= 0 {
		msg += fmt.Sprintf(" (rule[%d])", e.Rule)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DeclarationError) Unwrap() error { return e.Reason }

func IsTransitionNotAllowedError(err error) bool {
	var e *TransitionNotAllowedError
	return errors.As(err, &e)
}

func IsInvalidStateError(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

func IsDeclarationError(err error) bool {
	var e *DeclarationError
	return errors.As(err, &e)
}

func quote(s string) string {
	return strconv.Quote(s)
}
