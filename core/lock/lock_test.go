package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SameKeySerialized(t *testing.T) {
	locker := NewLocal()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := locker.Obtain(ctx, "reconcile:2026-01")
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
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, l.Release(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Empty(t, locker.slots)
}

func TestLocalLocker_DifferentKeysIndependent(t *testing.T) {
	locker := NewLocal()
	ctx := context.Background()

	a, err := locker.Obtain(ctx, "reconcile:2026-01")
	require.NoError(t, err)
	b, err := locker.Obtain(ctx, "reconcile:2026-02")
	require.NoError(t, err)

	assert.NoError(t, a.Release(ctx))
	assert.NoError(t, b.Release(ctx))
}

func TestLocalLocker_ContextDone(t *testing.T) {
	locker := NewLocal()
	held, err := locker.Obtain(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Obtain(ctx, "k")
	assert.ErrorIs(t, err, ErrNotObtained)

	// Double release is harmless
	assert.NoError(t, held.Release(context.Background()))
	assert.NoError(t, held.Release(context.Background()))

	again, err := locker.Obtain(context.Background(), "k")
	require.NoError(t, err)
	assert.NoError(t, again.Release(context.Background()))
}

func TestNew(t *testing.T) {
	l, err := New(Config{Driver: "local"})
	assert.NoError(t, err)
	assert.IsType(t, &LocalLocker{}, l)

	_, err = New(Config{Driver: "zookeeper"})
	assert.ErrorContains(t, err, "unsupported lock driver")

	_, err = New(Config{Driver: "redis", RedisAddress: "127.0.0.1:1"})
	assert.Error(t, err)
}

type fakeHeld struct {
	mu         sync.Mutex
	refreshes  int
	refreshErr error
	releaseErr error
	released   int
}

func (f *fakeHeld) Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeHeld) Release(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return f.releaseErr
}

func (f *fakeHeld) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes, f.released
}

func TestNewRedisLocker_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		ttl     time.Duration
		backoff time.Duration
		retries int
	}{
		{"Configured", Config{TTLSeconds: 60, RetryMillis: 50, MaxRetries: 3}, time.Minute, 50 * time.Millisecond, 3},
		{"Zero Falls Back", Config{}, 5 * time.Minute, 200 * time.Millisecond, 0},
		{"Negative Falls Back", Config{TTLSeconds: -1, RetryMillis: -1, MaxRetries: -4}, 5 * time.Minute, 200 * time.Millisecond, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRedisLocker(nil, tt.cfg)
			assert.Equal(t, tt.ttl, r.ttl)
			assert.Equal(t, tt.backoff, r.backoff)
			assert.Equal(t, tt.retries, r.retries)
		})
	}
}

func TestRedisLocker_Obtain(t *testing.T) {
	ctx := context.Background()

	t.Run("Held Elsewhere", func(t *testing.T) {
		r := newRedisLocker(func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
			return nil, redislock.ErrNotObtained
		}, Config{})
		_, err := r.Obtain(ctx, "reconcile:2026-01")
		assert.ErrorIs(t, err, ErrNotObtained)
		assert.ErrorContains(t, err, "reconcile:2026-01")
	})

	t.Run("Redis Failure", func(t *testing.T) {
		r := newRedisLocker(func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
			return nil, errors.New("connection refused")
		}, Config{})
		_, err := r.Obtain(ctx, "reconcile:2026-01")
		assert.NotErrorIs(t, err, ErrNotObtained)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("Passes TTL And Retry", func(t *testing.T) {
		held := &fakeHeld{}
		var gotTTL time.Duration
		var gotOpt *redislock.Options
		r := newRedisLocker(func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
			gotTTL, gotOpt = ttl, opt
			return held, nil
		}, Config{TTLSeconds: 30})
		l, err := r.Obtain(ctx, "reconcile:2026-01")
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, gotTTL)
		require.NotNil(t, gotOpt)
		assert.NotNil(t, gotOpt.RetryStrategy)

		assert.NoError(t, l.Release(ctx))
		assert.NoError(t, l.Release(ctx))
		_, released := held.counts()
		assert.Equal(t, 1, released)
	})
}

func TestRedisLocker_RefreshesWhileHeld(t *testing.T) {
	ctx := context.Background()
	held := &fakeHeld{}
	r := newRedisLocker(func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
		return held, nil
	}, Config{})
	r.ttl = 40 * time.Millisecond

	l, err := r.Obtain(ctx, "reconcile:2026-01")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		refreshes, _ := held.counts()
		return refreshes >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, l.Release(ctx))
	after, released := held.counts()
	assert.Equal(t, 1, released)

	time.Sleep(60 * time.Millisecond)
	refreshes, _ := held.counts()
	assert.Equal(t, after, refreshes)
}

func TestRedisLocker_LostLockReportedOnRelease(t *testing.T) {
	ctx := context.Background()
	held := &fakeHeld{refreshErr: redislock.ErrNotObtained}
	r := newRedisLocker(func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
		return held, nil
	}, Config{})
	r.ttl = 20 * time.Millisecond

	l, err := r.Obtain(ctx, "reconcile:2026-01")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		refreshes, _ := held.counts()
		return refreshes >= 1
	}, time.Second, 5*time.Millisecond)

	err = l.Release(ctx)
	assert.ErrorIs(t, err, redislock.ErrNotObtained)
	assert.ErrorContains(t, err, "lost before release")
	_, released := held.counts()
	assert.Equal(t, 0, released)
}
