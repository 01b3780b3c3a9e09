package mongostore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/statekit/pkg/record"
)

// Collection is the subset of *mongo.Collection used by Store.
type Collection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter any, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...options.Lister[options.CountOptions]) (int64, error)
}

type document struct {
	ID         string            `bson:"_id"`
	Kind       string            `bson:"kind"`
	Attributes map[string]string `bson:"attributes"`
	Version    int64             `bson:"version"`
	UpdatedAt  time.Time         `bson:"updated_at"`
}

// Store keeps one document per record, keyed by the record ID in string form.
type Store struct {
	coll Collection
}

func NewStore(coll Collection) *Store {
	return &Store{coll: coll}
}

// Create inserts r at version 1 and binds it to the store.
func (s *Store) Create(ctx context.Context, r *record.Record) error {
	attrs := r.Attributes()
	if err := validateNames(attrs); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err := s.coll.InsertOne(ctx, document{
		ID:         r.ID.String(),
		Kind:       r.Kind,
		Attributes: attrs,
		Version:    1,
		UpdatedAt:  now,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return record.ErrExists
		}
		return err
	}

	r.UpdatedAt = now
	r.MarkSaved(1)
	r.Bind(s)
	return nil
}

// Get loads a record bound to the store.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	var doc document
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, record.ErrNotFound
		}
		return nil, err
	}
	return record.Restore(id, doc.Kind, doc.Version, doc.UpdatedAt, doc.Attributes, s), nil
}

// Save merges the pending changes of r into the stored document when its
// version still matches, and reports record.ErrConflict otherwise.
func (s *Store) Save(ctx context.Context, r *record.Record) error {
	changes := r.Changes()
	if err := validateNames(changes); err != nil {
		return err
	}

	res, err := s.coll.UpdateOne(ctx, SaveFilter(r.ID, r.Version), SaveUpdate(changes, time.Now().UTC()))
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: r.ID.String()}})
	if err != nil {
		return err
	}
	if n == 0 {
		return record.ErrNotFound
	}
	return record.ErrConflict
}

// SaveFilter matches the document only at the expected version.
func SaveFilter(id uuid.UUID, version int64) bson.D {
	return bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "version", Value: version},
	}
}

// SaveUpdate sets each changed attribute individually and bumps the version.
func SaveUpdate(changes map[string]string, now time.Time) bson.D {
	set := bson.D{{Key: "updated_at", Value: now}}
	for _, name := range slices.Sorted(maps.Keys(changes)) {
		set = append(set, bson.E{Key: "attributes." + name, Value: changes[name]})
	}
	return bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}
}

func validateNames(attrs map[string]string) error {
	for name := range attrs {
		if name == "" || strings.Contains(name, ".") || strings.HasPrefix(name, "$") {
			return ErrInvalidAttributeName
		}
	}
	return nil
}
