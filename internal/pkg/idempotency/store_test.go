package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHash_Deterministic(t *testing.T) {
	assert.Equal(t, RequestHash([]byte("payload")), RequestHash([]byte("payload")))
	assert.NotEqual(t, RequestHash([]byte("payload")), RequestHash([]byte("other")))
}

func TestNewStore_NilClientDisablesGuard(t *testing.T) {
	assert.Nil(t, NewStore(nil, time.Minute))
}

func TestStore_Get(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	store := NewStore(rdb, time.Hour)

	t.Run("missing", func(t *testing.T) {
		mock.ExpectGet(CacheKey("scope", "k1")).RedisNil()

		entry, err := store.Get(ctx, "scope", "k1")

		assert.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("cached", func(t *testing.T) {
		payload, _ := json.Marshal(Entry{RequestHash: "abc", StatusCode: 200, Body: json.RawMessage(`{"success":true}`)})
		mock.ExpectGet(CacheKey("scope", "k2")).SetVal(string(payload))

		entry, err := store.Get(ctx, "scope", "k2")

		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "abc", entry.RequestHash)
		assert.Equal(t, 200, entry.StatusCode)
		assert.JSONEq(t, `{"success":true}`, string(entry.Body))
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectGet(CacheKey("scope", "k3")).SetErr(errors.New("connection refused"))

		_, err := store.Get(ctx, "scope", "k3")

		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LockAndUnlock(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	store := NewStore(rdb, time.Hour)

	mock.ExpectSetNX(LockKey("scope", "k"), "locked", defaultLockTTL).SetVal(true)
	mock.ExpectSetNX(LockKey("scope", "k"), "locked", defaultLockTTL).SetVal(false)
	mock.ExpectDel(LockKey("scope", "k")).SetVal(1)

	ok, err := store.Lock(ctx, "scope", "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Lock(ctx, "scope", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Unlock(ctx, "scope", "k"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	store := NewStore(rdb, time.Hour)

	entry := Entry{RequestHash: "abc", StatusCode: 200, Body: json.RawMessage(`{"success":true}`)}
	payload, _ := json.Marshal(entry)
	mock.ExpectSet(CacheKey("scope", "k"), payload, time.Hour).SetVal("OK")

	assert.NoError(t, store.Save(ctx, "scope", "k", entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}
