package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/statekit/pkg/record"
	"github.com/dmitrymomot/statekit/pkg/redisstore"
)

func setupStore(t *testing.T, opts ...redisstore.Option) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisstore.NewStore(client, opts...), mr
}

func TestStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := setupStore(t, redisstore.WithPrefix("test:"))

	doc := record.New("document", map[string]string{"status": "draft", "score": "75"})
	require.NoError(t, store.Create(ctx, doc))
	assert.Equal(t, int64(1), doc.Version)
	assert.False(t, doc.Dirty())

	key := "test:" + doc.ID.String()
	assert.True(t, mr.Exists(key))
	assert.Equal(t, "draft", mr.HGet(key, "attr:status"))
	assert.Equal(t, "1", mr.HGet(key, "version"))

	loaded, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "document", loaded.Kind)
	assert.Equal(t, map[string]string{"status": "draft", "score": "75"}, loaded.Attributes())
	assert.Equal(t, int64(1), loaded.Version)
	assert.WithinDuration(t, doc.UpdatedAt, loaded.UpdatedAt, time.Second)

	t.Run("duplicate", func(t *testing.T) {
		assert.ErrorIs(t, store.Create(ctx, doc), record.ErrExists)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, record.ErrNotFound)
	})

	t.Run("corrupt version", func(t *testing.T) {
		id := uuid.New()
		mr.HSet("test:"+id.String(), "kind", "document", "version", "x")

		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, redisstore.ErrCorruptRecord)
	})
}

func TestStore_Save(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := setupStore(t)

	doc := record.New("document", map[string]string{"status": "draft", "score": "10"})
	require.NoError(t, store.Create(ctx, doc))
	key := "statekit:record:" + doc.ID.String()

	doc.SetAttribute("status", "pending")
	require.NoError(t, doc.Persist(ctx))
	assert.Equal(t, int64(2), doc.Version)
	assert.Equal(t, "pending", mr.HGet(key, "attr:status"))
	assert.Equal(t, "10", mr.HGet(key, "attr:score"))
	assert.Equal(t, "2", mr.HGet(key, "version"))

	t.Run("stale copy conflicts", func(t *testing.T) {
		stale := record.Restore(doc.ID, doc.Kind, 1, time.Now(), doc.Attributes(), store)
		stale.SetAttribute("status", "rejected")

		assert.ErrorIs(t, stale.Persist(ctx), record.ErrConflict)
		assert.Equal(t, "pending", mr.HGet(key, "attr:status"))
	})

	t.Run("deleted record", func(t *testing.T) {
		other := record.New("document", map[string]string{"status": "draft"})
		require.NoError(t, store.Create(ctx, other))
		require.NoError(t, store.Delete(ctx, other.ID))

		other.SetAttribute("status", "pending")
		assert.ErrorIs(t, other.Persist(ctx), record.ErrNotFound)
	})
}

func TestStore_IDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := setupStore(t, redisstore.WithScanBatchSize(2))

	want := make([]uuid.UUID, 0, 5)
	for range 5 {
		doc := record.New("document", map[string]string{"status": "draft"})
		require.NoError(t, store.Create(ctx, doc))
		want = append(want, doc.ID)
	}
	mr.HSet("statekit:record:not-a-uuid", "kind", "document")
	require.NoError(t, mr.Set("unrelated", "1"))

	ids, err := store.IDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, ids)
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	check := redisstore.Healthcheck(client)
	require.NoError(t, check(context.Background()))

	mr.Close()
	assert.ErrorIs(t, check(context.Background()), redisstore.ErrHealthcheckFailed)
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("empty url", func(t *testing.T) {
		_, err := redisstore.Connect(context.Background(), redisstore.Config{})
		assert.ErrorIs(t, err, redisstore.ErrEmptyConnectionURL)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := redisstore.Connect(context.Background(), redisstore.Config{ConnectionURL: "http://nope"})
		assert.ErrorIs(t, err, redisstore.ErrFailedToParseRedisConnString)
	})

	t.Run("success", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := redisstore.Connect(context.Background(), redisstore.Config{
			ConnectionURL:  "redis://" + mr.Addr(),
			RetryAttempts:  1,
			ConnectTimeout: time.Second,
		})
		require.NoError(t, err)
		_ = client.Close()
	})
}
