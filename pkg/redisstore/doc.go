// Package redisstore persists records in Redis hashes using go-redis/v9.
//
// Every record is a hash at <prefix><id> holding the kind, the version counter,
// the last update time and one attr:<name> field per attribute. Save runs inside
// WATCH/MULTI: it checks the stored version, merges the changed attributes and
// increments the version atomically. A version mismatch or an aborted EXEC is
// reported as record.ErrConflict.
//
// # Usage
//
//	client, err := redisstore.Connect(ctx, cfg)
//	store := redisstore.NewStore(client, redisstore.WithConfig(cfg))
//
//	doc := record.New("document", map[string]string{"status": "draft"})
//	if err := store.Create(ctx, doc); err != nil { ... }
//
// Connect retries the initial ping RetryAttempts times within ConnectTimeout.
package redisstore
