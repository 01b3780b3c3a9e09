package statemachine_test

import (
	"context"
	"strconv"

	"github.com/dmitrymomot/statekit/pkg/statemachine"
)

// docState is backed by an integer so that raw values and names differ.
type docState int

const (
	draft docState = iota + 1
	pending
	approved
	rejected
)

func (s docState) Name() string {
	switch s {
	case draft:
		return "Draft"
	case pending:
		return "Pending"
	case approved:
		return "Approved"
	case rejected:
		return "Rejected"
	}
	return "Unknown(" + strconv.Itoa(int(s)) + ")"
}

func (s docState) Value() string {
	return strconv.Itoa(int(s))
}

var docStates = statemachine.MustNewEnum(draft, pending, approved, rejected)

type document struct {
	attrs        map[string]string
	score        int
	persistCalls int
	persistErr   error
}

func newDocument(state docState, score int) *document {
	return &document{
		attrs: map[string]string{"status": state.Value()},
		score: score,
	}
}

func (d *document) Attribute(name string) string { return d.attrs[name] }

func (d *document) SetAttribute(name, value string) { d.attrs[name] = value }

func (d *document) Persist(context.Context) error {
	d.persistCalls++
	return d.persistErr
}

type scoreGuard struct {
	min   int
	calls int
}

func (g *scoreGuard) IsAllowed(_ context.Context, d *document) bool {
	g.calls++
	return d.score >= g.min
}

// recordingHandler moves the document to a fixed state on its own.
type recordingHandler struct {
	target docState
	calls  int
	err    error
}

func (h *recordingHandler) Apply(_ context.Context, d *document) error {
	h.calls++
	if h.err != nil {
		return h.err
	}
	d.SetAttribute("status", h.target.Value())
	return nil
}

// guardedHandler implements both capabilities.
type guardedHandler struct {
	allow bool
	calls int
}

func (h *guardedHandler) IsAllowed(context.Context, *document) bool { return h.allow }

func (h *guardedHandler) Apply(_ context.Context, d *document) error {
	h.calls++
	d.SetAttribute("status", approved.Value())
	return nil
}

type observed struct {
	machine, from, to string
	applied           bool
}

type recordingObserver struct {
	events []observed
}

func (o *recordingObserver) TransitionApplied(_ context.Context, machine, from, to string) {
	o.events = append(o.events, observed{machine: machine, from: from, to: to, applied: true})
}

func (o *recordingObserver) TransitionRejected(_ context.Context, machine, from, to string) {
	o.events = append(o.events, observed{machine: machine, from: from, to: to})
}
