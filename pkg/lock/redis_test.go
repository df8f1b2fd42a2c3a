package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"topicrelay/pkg/logger"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis, *observer.ObservedLogs) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	return NewRedis(client, "topicrelay", 5*time.Second, logger.FromZap(zap.New(core))), mr, logs
}

func TestRedis_LockIsExclusive(t *testing.T) {
	l, mr, logs := newTestRedis(t)

	unlock, err := l.Lock(context.Background(), "topic:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("topicrelay:lock:topic:1"))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "topic:1")
	assert.ErrorIs(t, err, ErrNotAcquired)

	unlock()
	assert.False(t, mr.Exists("topicrelay:lock:topic:1"))

	again, err := l.Lock(context.Background(), "topic:1")
	require.NoError(t, err)
	again()
	assert.Zero(t, logs.Len())
}

func TestRedis_DifferentKeysDoNotBlock(t *testing.T) {
	l, _, _ := newTestRedis(t)

	first, err := l.Lock(context.Background(), "topic:1")
	require.NoError(t, err)
	defer first()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	second, err := l.Lock(ctx, "topic:2")
	require.NoError(t, err)
	second()
}

func TestRedis_LeaseExpires(t *testing.T) {
	l, mr, logs := newTestRedis(t)

	stale, err := l.Lock(context.Background(), "topic:2")
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock, err := l.Lock(ctx, "topic:2")
	require.NoError(t, err)

	// The expired holder must not release the new lease.
	stale()
	assert.True(t, mr.Exists("topicrelay:lock:topic:2"))
	assert.Equal(t, 1, logs.FilterMessage("lock lease expired before release").Len())

	unlock()
	assert.False(t, mr.Exists("topicrelay:lock:topic:2"))
}

func TestRedis_FailedReleaseIsLogged(t *testing.T) {
	l, mr, logs := newTestRedis(t)

	unlock, err := l.Lock(context.Background(), "topic:3")
	require.NoError(t, err)

	mr.Close()
	unlock()

	entries := logs.FilterMessage("failed to release lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "topicrelay:lock:topic:3", entries[0].ContextMap()["key"])
}
