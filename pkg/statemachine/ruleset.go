package statemachine

// RuleSet is the ordered, immutable collection of rules of one machine type.
// It is safe for concurrent use.
type RuleSet[S State] struct {
	rules    []Rule[S]
	index    map[Key[S]]int // first declaring rule for each pair
	shadowed []Key[S]
}

func newRuleSet[S State](rules []Rule[S]) *RuleSet[S] {
	rs := &RuleSet[S]{
		rules: make([]Rule[S], len(rules)),
		index: make(map[Key[S]]int),
	}
	copy(rs.rules, rules)

	for i, r := range rs.rules {
		for _, k := range r.Keys() {
			if _, ok := rs.index[k]; ok {
				// Earlier declaration stays authoritative; the later one is unreachable.
				rs.shadowed = append(rs.shadowed, k)
				continue
			}
			rs.index[k] = i
		}
	}

	return rs
}

// Find returns the first declared rule covering the transition.
// The boolean is false when the transition is not declared at all.
func (rs *RuleSet[S]) Find(from, to S) (Rule[S], bool) {
	i, ok := rs.lookup(from, to)
	if !ok {
		return Rule[S]{}, false
	}
	return rs.rules[i], true
}

func (rs *RuleSet[S]) lookup(from, to S) (int, bool) {
	i, ok := rs.index[Key[S]{From: from, To: to}]
	return i, ok
}

// Rules returns all rules in declaration order.
func (rs *RuleSet[S]) Rules() []Rule[S] {
	out := make([]Rule[S], len(rs.rules))
	copy(out, rs.rules)
	return out
}

// From returns the rules leaving the given state, in declaration order.
func (rs *RuleSet[S]) From(state S) []Rule[S] {
	var out []Rule[S]
	for _, r := range rs.rules {
		for _, f := range r.from {
			if f == state {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Shadowed returns the pairs claimed by more than one rule, once per extra claim.
func (rs *RuleSet[S]) Shadowed() []Key[S] {
	out := make([]Key[S], len(rs.shadowed))
	copy(out, rs.shadowed)
	return out
}

// Len returns the number of declared rules.
func (rs *RuleSet[S]) Len() int {
	return len(rs.rules)
}
