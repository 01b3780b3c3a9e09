// Package rulefile declares state machine rule tables in YAML.
//
//	name: review
//	transitions:
//	  - from: draft
//	    to: pending
//	  - from: [pending]
//	    to: approved
//	    handler: score_guard
//
// Handler names are resolved through an explicit Registry when the rules are built;
// nothing is looked up or instantiated dynamically:
//
//	f, err := rulefile.Load("review.yaml")
//	opts, err := rulefile.Options(f, states, rulefile.Registry{"score_guard": ScoreGuard{}})
//	def, err := statemachine.New[*record.Record](states, opts...)
package rulefile
