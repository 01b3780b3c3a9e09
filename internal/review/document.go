package review

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrymomot/statekit/pkg/record"
)

const (
	Kind            = "document"
	AttrStatus      = "status"
	AttrScore       = "score"
	MinApproveScore = 50
)

var ErrNotADocument = errors.New("record is not a review document")

// NewDocument creates an unsaved draft with the given score.
func NewDocument(score int) *record.Record {
	return record.New(Kind, map[string]string{
		AttrStatus: Draft.Value(),
		AttrScore:  strconv.Itoa(score),
	})
}

// Score returns the document score. A missing or malformed score reads as zero.
func Score(doc *record.Record) int {
	n, err := strconv.Atoi(doc.Attribute(AttrScore))
	if err != nil {
		return 0
	}
	return n
}

// ScoreGuard allows a transition only when the document score reaches Min.
type ScoreGuard struct {
	Min int
}

func (g ScoreGuard) IsAllowed(_ context.Context, doc *record.Record) bool {
	return Score(doc) >= g.Min
}

// ResetHandler sends a rejected document back to draft with its score cleared.
// If the write fails both attributes are put back.
type ResetHandler struct{}

func (ResetHandler) Apply(ctx context.Context, doc *record.Record) error {
	prevScore, prevStatus := doc.Attribute(AttrScore), doc.Attribute(AttrStatus)

	doc.SetAttribute(AttrScore, "0")
	doc.SetAttribute(AttrStatus, Draft.Value())
	if err := doc.Persist(ctx); err != nil {
		doc.SetAttribute(AttrScore, prevScore)
		doc.SetAttribute(AttrStatus, prevStatus)
		return err
	}
	return nil
}
