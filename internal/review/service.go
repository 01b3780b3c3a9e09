package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/statekit/pkg/logger"
	"github.com/dmitrymomot/statekit/pkg/record"
)

// Store is implemented by record.MemoryStore and by every database store.
type Store interface {
	Create(ctx context.Context, r *record.Record) error
	Get(ctx context.Context, id uuid.UUID) (*record.Record, error)
}

// Service runs the review workflow against a store.
type Service struct {
	store Store
	def   *Definition
	log   *slog.Logger
}

func NewService(store Store, def *Definition, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store: store,
		def:   def,
		log:   log.With(logger.Component("review")),
	}
}

// Definition returns the machine type used by the service.
func (s *Service) Definition() *Definition {
	return s.def
}

// Create stores a new draft document.
func (s *Service) Create(ctx context.Context, score int) (*record.Record, error) {
	doc := NewDocument(score)
	if err := s.store.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.log.InfoContext(ctx, "document created", logger.RecordID(doc.ID.String()))
	return doc, nil
}

// Open loads a document and its state machine.
func (s *Service) Open(ctx context.Context, id uuid.UUID) (*Machine, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Kind != Kind {
		return nil, fmt.Errorf("%w: kind %q", ErrNotADocument, doc.Kind)
	}
	return s.def.Load(doc, AttrStatus)
}

// Allowed lists the statuses the document can move to right now.
func (s *Service) Allowed(ctx context.Context, id uuid.UUID) ([]Status, error) {
	m, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.AllowedTransitions(ctx), nil
}

// Transition moves the document to target and returns the machine in its new state.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target Status) (*Machine, error) {
	m, err := s.Open(ctx, id)
	if err != nil {
		return nil, err
	}

	from := m.Current()
	if err := m.TransitionTo(ctx, target); err != nil {
		s.log.WarnContext(ctx, "document transition failed",
			logger.RecordID(id.String()),
			logger.FromState(from.Name()),
			logger.ToState(target.Name()),
			logger.Error(err),
		)
		return m, err
	}

	s.log.InfoContext(ctx, "document transitioned",
		logger.RecordID(id.String()),
		logger.FromState(from.Name()),
		logger.ToState(m.Name()),
	)
	return m, nil
}
