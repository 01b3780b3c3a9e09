package rulefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/statekit/pkg/statemachine"
)

// File is the document form of a rule table.
type File struct {
	Name        string       `yaml:"name,omitempty"`
	Strict      bool         `yaml:"strict,omitempty"`
	Transitions []Transition `yaml:"transitions"`
}

// Transition declares one rule. States are referenced by raw value or by name.
type Transition struct {
	From    Sources `yaml:"from"`
	To      string  `yaml:"to"`
	Handler string  `yaml:"handler,omitempty"`
}

// Sources accepts either a single state or a list of states.
type Sources []string

func (s *Sources) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = Sources{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("line %d: 'from' must be a state or a list of states", node.Line)
	}
}

// Registry maps handler names used in rule files to guard and handler values.
type Registry map[string]any

// Decode reads a rule file. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Join(ErrInvalidRuleFile, errors.New("empty document"))
		}
		return nil, errors.Join(ErrInvalidRuleFile, err)
	}
	if len(f.Transitions) == 0 {
		return nil, errors.Join(ErrInvalidRuleFile, errors.New("no transitions declared"))
	}
	return &f, nil
}

// Parse decodes a rule file held in memory.
func Parse(data []byte) (*File, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads and decodes the rule file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return Parse(data)
}

// Encode writes f as YAML.
func Encode(w io.Writer, f *File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// Rules resolves the file against the declared states and the handler registry.
// Rule order is preserved, so the first declared rule for a transition still wins.
func Rules[S statemachine.State](f *File, enum *statemachine.Enum[S], registry Registry) ([]statemachine.Rule[S], error) {
	rules := make([]statemachine.Rule[S], 0, len(f.Transitions))
	for i, t := range f.Transitions {
		if len(t.From) == 0 {
			return nil, errors.Join(ErrInvalidRuleFile, fmt.Errorf("transitions[%d]: no source states", i))
		}

		from := make([]S, 0, len(t.From))
		for _, ref := range t.From {
			s, err := lookupState(enum, ref)
			if err != nil {
				return nil, fmt.Errorf("transitions[%d].from: %w", i, err)
			}
			from = append(from, s)
		}

		to, err := lookupState(enum, t.To)
		if err != nil {
			return nil, fmt.Errorf("transitions[%d].to: %w", i, err)
		}

		var opts []statemachine.RuleOption
		if t.Handler != "" {
			h, ok := registry[t.Handler]
			if !ok {
				return nil, fmt.Errorf("transitions[%d]: %w: %q", i, ErrUnknownHandler, t.Handler)
			}
			opts = append(opts, statemachine.WithHandler(h))
		}

		rules = append(rules, statemachine.NewRule(from, to, opts...))
	}
	return rules, nil
}

// Options converts the file into machine type options: its name, its strictness
// and the resolved rules.
func Options[S statemachine.State](f *File, enum *statemachine.Enum[S], registry Registry) ([]statemachine.Option, error) {
	rules, err := Rules(f, enum, registry)
	if err != nil {
		return nil, err
	}

	opts := []statemachine.Option{statemachine.WithRules(rules...)}
	if f.Name != "" {
		opts = append(opts, statemachine.WithName(f.Name))
	}
	if f.Strict {
		opts = append(opts, statemachine.WithStrictRules())
	}
	return opts, nil
}

// FromRules builds a file from an existing rule table. Handlers are named with
// nameOf; a nil nameOf or an empty name drops the handler reference.
func FromRules[S statemachine.State](name string, rules []statemachine.Rule[S], nameOf func(handler any) string) *File {
	f := &File{Name: name, Transitions: make([]Transition, 0, len(rules))}
	for _, r := range rules {
		t := Transition{To: r.To().Value()}
		for _, s := range r.From() {
			t.From = append(t.From, s.Value())
		}
		if h := r.Handler(); h != nil && nameOf != nil {
			t.Handler = nameOf(h)
		}
		f.Transitions = append(f.Transitions, t)
	}
	return f
}

func lookupState[S statemachine.State](enum *statemachine.Enum[S], ref string) (S, error) {
	if s, err := enum.Parse(ref); err == nil {
		return s, nil
	}
	for _, s := range enum.States() {
		if strings.EqualFold(s.Name(), ref) {
			return s, nil
		}
	}
	var zero S
	return zero, fmt.Errorf("%w: %q", ErrUnknownState, ref)
}
