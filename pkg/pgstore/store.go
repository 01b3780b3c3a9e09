package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/statekit/pkg/record"
)

// DB is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	insertRecordSQL = `INSERT INTO state_records (id, kind, attributes, version)
VALUES ($1, $2, $3::jsonb, 1)
RETURNING updated_at`

	selectRecordSQL = `SELECT kind, attributes, version, updated_at
FROM state_records
WHERE id = $1`

	// Only changed attributes are merged so that concurrent writers touching
	// different attributes of a stale copy still lose on the version check.
	updateRecordSQL = `UPDATE state_records
SET attributes = attributes || $3::jsonb, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $2`

	recordExistsSQL = `SELECT EXISTS (SELECT 1 FROM state_records WHERE id = $1)`
)

// Store persists records in the state_records table.
type Store struct {
	db DB
}

// NewStore creates a store on top of a pool, connection or transaction.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts r at version 1 and binds it to the store.
func (s *Store) Create(ctx context.Context, r *record.Record) error {
	var updatedAt time.Time
	err := s.db.QueryRow(ctx, insertRecordSQL, r.ID, r.Kind, r.Attributes()).Scan(&updatedAt)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return record.ErrExists
		}
		return errors.Join(ErrSaveFailed, err)
	}

	r.UpdatedAt = updatedAt
	r.MarkSaved(1)
	r.Bind(s)
	return nil
}

// Get loads a record bound to the store.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*record.Record, error) {
	var (
		kind      string
		attrs     map[string]string
		version   int64
		updatedAt time.Time
	)
	err := s.db.QueryRow(ctx, selectRecordSQL, id).Scan(&kind, &attrs, &version, &updatedAt)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, record.ErrNotFound
		}
		return nil, errors.Join(ErrLoadFailed, err)
	}
	return record.Restore(id, kind, version, updatedAt, attrs, s), nil
}

// Save writes the pending changes of r if its version is still current.
// It returns record.ErrConflict when another writer got there first.
func (s *Store) Save(ctx context.Context, r *record.Record) error {
	tag, err := s.db.Exec(ctx, updateRecordSQL, r.ID, r.Version, r.Changes())
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRow(ctx, recordExistsSQL, r.ID).Scan(&exists); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if !exists {
		return record.ErrNotFound
	}
	return record.ErrConflict
}
