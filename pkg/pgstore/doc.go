// Package pgstore persists records in PostgreSQL using pgx/v5.
//
// Records live in a single state_records table created by Migrate (goose, embedded
// SQL files). Attributes are stored as a JSONB object and the version column
// implements optimistic locking: Save only updates the row when the version
// read by the caller is still current and reports record.ErrConflict otherwise.
//
// # Usage
//
//	cfg, err := config.Load[pgstore.Config]()
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err := pgstore.Migrate(ctx, pool, cfg, log); err != nil { ... }
//
//	store := pgstore.NewStore(pool)
//	doc := record.New("document", map[string]string{"status": "draft"})
//	err = store.Create(ctx, doc)
//
// Connect retries failed attempts RetryAttempts times, waiting a little
// longer after each one. Healthcheck wraps Pool.Ping for readiness probes.
package pgstore
