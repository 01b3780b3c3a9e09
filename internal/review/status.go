package review

import (
	"strings"

	"github.com/dmitrymomot/statekit/pkg/statemachine"
)

// Status is the review state of a document.
type Status string

const (
	Draft    Status = "draft"
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

func (s Status) Name() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func (s Status) Value() string {
	return string(s)
}

// Statuses is the codec for the status attribute.
var Statuses = statemachine.MustNewEnum(Draft, Pending, Approved, Rejected)

// ParseStatus accepts a raw value ("pending") or a name in any case ("Pending").
func ParseStatus(s string) (Status, error) {
	return Statuses.Parse(strings.ToLower(strings.TrimSpace(s)))
}
