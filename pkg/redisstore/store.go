package redisstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/statekit/pkg/record"
)

const (
	fieldKind      = "kind"
	fieldVersion   = "version"
	fieldUpdatedAt = "updated_at"
	attrPrefix     = "attr:"
)

// Store keeps each record in a hash at <prefix><id>. Attributes are stored in
// fields named attr:<name> next to the kind, version and updated_at fields.
type Store struct {
	client        redis.UniversalClient
	prefix        string
	scanBatchSize int64
}

type Option func(*Store)

// WithPrefix sets the key prefix. The default is "statekit:record:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithScanBatchSize sets the COUNT hint used by IDs.
func WithScanBatchSize(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.scanBatchSize = n
		}
	}
}

// WithConfig applies KeyPrefix and ScanBatchSize from cfg.
func WithConfig(cfg Config) Option {
	return func(s *Store) {
		if cfg.KeyPrefix != "" {
			s.prefix = cfg.KeyPrefix
		}
		if cfg.ScanBatchSize > 0 {
			s.scanBatchSize = cfg.ScanBatchSize
		}
	}
}

func NewStore(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:        client,
		prefix:        "statekit:record:",
		scanBatchSize: 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

// Create writes r at version 1 and binds it to the store.
func (s *Store) Create(ctx context.Context, r *record.Record) error {
	key := s.key(r.ID)
	now := time.Now().UTC()

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return record.ErrExists
		}

		fields := []any{
			fieldKind, r.Kind,
			fieldVersion, 1,
			fieldUpdatedAt, now.Format(time.RFC3339Nano),
		}
		fields = appendAttributes(fields, r.Attributes())

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields...)
			return nil
		})
		return err
	}, key)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
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
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, record.ErrNotFound
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, errors.Join(ErrCorruptRecord, err)
	}
	var updatedAt time.Time
	if raw := fields[fieldUpdatedAt]; raw != "" {
		if updatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, errors.Join(ErrCorruptRecord, err)
		}
	}

	attrs := make(map[string]string, len(fields))
	for field, value := range fields {
		if name, ok := strings.CutPrefix(field, attrPrefix); ok {
			attrs[name] = value
		}
	}
	return record.Restore(id, fields[fieldKind], version, updatedAt, attrs, s), nil
}

// Save writes the pending changes of r inside a WATCH transaction. The write is
// rejected with record.ErrConflict when the stored version differs from r.Version
// or the key changes between the check and EXEC.
func (s *Store) Save(ctx context.Context, r *record.Record) error {
	key := s.key(r.ID)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		version, err := tx.HGet(ctx, key, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			return record.ErrNotFound
		}
		if err != nil {
			return err
		}
		if version != r.Version {
			return record.ErrConflict
		}

		fields := []any{fieldUpdatedAt, time.Now().UTC().Format(time.RFC3339Nano)}
		fields = appendAttributes(fields, r.Changes())

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields...)
			pipe.HIncrBy(ctx, key, fieldVersion, 1)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return record.ErrConflict
	}
	return err
}

// Delete removes a record. Missing records are ignored.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// IDs lists the identifiers of all records under the store prefix.
// Keys that do not end in a valid UUID are skipped.
func (s *Store) IDs(ctx context.Context) ([]uuid.UUID, error) {
	var (
		ids    []uuid.UUID
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			if id, err := uuid.Parse(strings.TrimPrefix(key, s.prefix)); err == nil {
				ids = append(ids, id)
			}
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

func appendAttributes(fields []any, attrs map[string]string) []any {
	for name, value := range attrs {
		fields = append(fields, attrPrefix+name, value)
	}
	return fields
}
