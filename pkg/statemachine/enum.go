package statemachine

// Enum is the codec between raw persisted values and the closed set of states
// a machine type declares. It is immutable after construction.
type Enum[S State] struct {
	states []S
	byRaw  map[string]S
}

// NewEnum builds a codec for the given states. The order of states is preserved
// and used wherever states are listed. Raw values must be unique.
func NewEnum[S State](states ...S) (*Enum[S], error) {
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	e := &Enum[S]{
		states: make([]S, 0, len(states)),
		byRaw:  make(map[string]S, len(states)),
	}

	for _, s := range states {
		raw := s.Value()
		if _, ok := e.byRaw[raw]; ok {
			return nil, &DeclarationError{Reason: ErrDuplicateState, Rule: -1, Detail: "raw value " + quote(raw)}
		}
		e.byRaw[raw] = s
		e.states = append(e.states, s)
	}

	return e, nil
}

// MustNewEnum is like NewEnum but panics on error.
func MustNewEnum[S State](states ...S) *Enum[S] {
	e, err := NewEnum(states...)
	if err != nil {
		panic("failed to create state enum: " + err.Error())
	}
	return e
}

// Parse converts a raw persisted value into a declared state.
func (e *Enum[S]) Parse(raw string) (S, error) {
	if s, ok := e.byRaw[raw]; ok {
		return s, nil
	}
	var zero S
	return zero, &InvalidStateError{Raw: raw}
}

// Format converts a state into its raw persisted value.
func (e *Enum[S]) Format(s S) string {
	return s.Value()
}

// Contains reports whether s is one of the declared states.
func (e *Enum[S]) Contains(s S) bool {
	found, ok := e.byRaw[s.Value()]
	return ok && found == s
}

// States returns the declared states in declaration order.
func (e *Enum[S]) States() []S {
	out := make([]S, len(e.states))
	copy(out, e.states)
	return out
}
