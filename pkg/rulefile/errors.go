package rulefile

import "errors"

var (
	ErrInvalidRuleFile = errors.New("invalid rule file")
	ErrUnknownHandler  = errors.New("handler is not registered")
	ErrUnknownState    = errors.New("state is not declared")
)
