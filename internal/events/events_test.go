package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/webblog/internal/logging"
)

func newTestStore(t *testing.T, ttl time.Duration, max int) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewStore(rdb, ttl, max)
}

func TestStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t, time.Hour, 100)

	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, store.Append(ctx, &Event{Kind: KindLoginFailed, UserID: id}))
	}

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	list, err := store.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u3", list[0].UserID, "newest first")
	assert.Equal(t, "u2", list[1].UserID)
	assert.NotEmpty(t, list[0].ID)
	assert.False(t, list[0].At.IsZero())

	list, err = store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u1", list[0].UserID)

	list, err = store.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreTrimsToMaxEntries(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t, 0, 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, &Event{Kind: KindSignatureMismatch}))
	}
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStoreRetention(t *testing.T) {
	ctx := context.Background()
	mr, store := newTestStore(t, time.Minute, 10)

	require.NoError(t, store.Append(ctx, &Event{Kind: KindLoginLocked}))
	mr.FastForward(2 * time.Minute)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreAppendNil(t *testing.T) {
	_, store := newTestStore(t, 0, 10)
	assert.Error(t, store.Append(context.Background(), nil))
}

func TestHandleEventTask(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t, time.Hour, 10)
	m := &Manager{store: store, log: logging.Nop()}

	body, err := json.Marshal(Event{ID: "e1", Kind: KindSignatureMismatch, UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, m.handleEventTask(ctx, asynq.NewTask(taskTypeSecurityEvent, body)))

	total, list, err := m.Recent(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "e1", list[0].ID)
	assert.Equal(t, KindSignatureMismatch, list[0].Kind)
}

func TestHandleEventTaskRejectsBadPayload(t *testing.T) {
	_, store := newTestStore(t, time.Hour, 10)
	m := &Manager{store: store, log: logging.Nop()}

	err := m.handleEventTask(context.Background(), asynq.NewTask(taskTypeSecurityEvent, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = m.handleEventTask(context.Background(), asynq.NewTask(taskTypeSecurityEvent, []byte(`{"user_id":"u1"}`)))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logging.NewWithWriter(&buf, "info"))

	sink.Emit(context.Background(), Event{Kind: KindLoginFailed, ClientIP: "10.0.0.1"})

	out := buf.String()
	assert.True(t, strings.Contains(out, `"kind":"login.failed"`), out)
	assert.True(t, strings.Contains(out, `"client_ip":"10.0.0.1"`), out)
}
