// Package review implements the document review workflow served by the statekit CLI.
//
// Documents are records of kind "document" with a status and a score:
//
//	Draft -> Pending -> Approved   (only with score >= 50)
//	              \--> Rejected -> Draft (score reset to 0)
//
// The rule table is declared in rules.yaml and resolved through Registry, so an
// alternative file can reuse the score_guard and reset_score handlers.
package review
