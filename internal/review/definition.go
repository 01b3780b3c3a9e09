package review

import (
	_ "embed"

	"github.com/dmitrymomot/statekit/pkg/record"
	"github.com/dmitrymomot/statekit/pkg/rulefile"
	"github.com/dmitrymomot/statekit/pkg/statemachine"
)

//go:embed rules.yaml
var defaultRules []byte

// Definition is the review machine type.
type Definition = statemachine.Definition[*record.Record, Status]

// Machine governs the status of one document.
type Machine = statemachine.Machine[*record.Record, Status]

// Registry names the guards and handlers available to review rule files.
func Registry() rulefile.Registry {
	return rulefile.Registry{
		"score_guard": ScoreGuard{Min: MinApproveScore},
		"reset_score": ResetHandler{},
	}
}

// DefaultRules returns the built-in rule file.
func DefaultRules() (*rulefile.File, error) {
	return rulefile.Parse(defaultRules)
}

// NewDefinition builds the review machine type from f, or from the built-in
// rules when f is nil. opts are applied after the rule file options.
func NewDefinition(f *rulefile.File, opts ...statemachine.Option) (*Definition, error) {
	if f == nil {
		var err error
		if f, err = DefaultRules(); err != nil {
			return nil, err
		}
	}

	fileOpts, err := rulefile.Options(f, Statuses, Registry())
	if err != nil {
		return nil, err
	}
	return statemachine.New[*record.Record](Statuses, append(fileOpts, opts...)...)
}

// HandlerName is the inverse of Registry. It returns an empty string for values
// the registry does not know.
func HandlerName(h any) string {
	switch h.(type) {
	case ScoreGuard:
		return "score_guard"
	case ResetHandler:
		return "reset_score"
	default:
		return ""
	}
}
