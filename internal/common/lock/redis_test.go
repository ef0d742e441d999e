package lock

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accelerator-portal/internal/common/errors"
)

func newMiniredisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLocker(rdb, ttl), mr
}

func TestAcquireAndRelease(t *testing.T) {
	l, mr := newMiniredisLocker(t, 5*time.Second)

	release, err := l.Acquire(context.Background(), "lock:cohorts")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:cohorts"))

	release()
	assert.False(t, mr.Exists("lock:cohorts"))
	release()
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	l, _ := newMiniredisLocker(t, 5*time.Second)

	release, err := l.Acquire(context.Background(), "lock:cohorts")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "lock:cohorts")
	require.Error(t, err)

	var std *errors.StandardError
	require.True(t, stderrors.As(err, &std))
	assert.Equal(t, errors.ErrCodeLockUnavailable, std.Code)
}

func TestRelease_DoesNotDeleteForeignLease(t *testing.T) {
	l, mr := newMiniredisLocker(t, time.Second)

	release, err := l.Acquire(context.Background(), "lock:cohorts")
	require.NoError(t, err)

	// Our lease expires and another writer takes the key.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock:cohorts", "someone-else"))

	release()
	v, err := mr.Get("lock:cohorts")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestAcquire_SerializesWriters(t *testing.T) {
	l, _ := newMiniredisLocker(t, 5*time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), "lock:cohorts")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestAcquire_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db, time.Second)

	mock.Regexp().ExpectSetNX("lock:cohorts", `.+`, time.Second).SetErr(stderrors.New("connection refused"))

	_, err := l.Acquire(context.Background(), "lock:cohorts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquire_RenewsLeaseWhileHeld(t *testing.T) {
	l, mr := newMiniredisLocker(t, 300*time.Millisecond)

	release, err := l.Acquire(context.Background(), "lock:cohorts")
	require.NoError(t, err)

	// Most of the lease elapses; renewal must push the expiry back out.
	mr.FastForward(250 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return mr.TTL("lock:cohorts") > 250*time.Millisecond
	}, time.Second, 10*time.Millisecond)

	mr.FastForward(250 * time.Millisecond)
	assert.True(t, mr.Exists("lock:cohorts"), "a held lease outlives its original ttl")

	release()
	assert.False(t, mr.Exists("lock:cohorts"))
}

func TestAcquire_StopsRenewingLostLease(t *testing.T) {
	l, mr := newMiniredisLocker(t, 300*time.Millisecond)

	release, err := l.Acquire(context.Background(), "lock:cohorts")
	require.NoError(t, err)
	defer release()

	require.NoError(t, mr.Set("lock:cohorts", "someone-else"))
	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, time.Duration(0), mr.TTL("lock:cohorts"), "a foreign key is never given our expiry")
	v, err := mr.Get("lock:cohorts")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}
