package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_HitAndExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache[int](time.Minute)
	c.now = func() time.Time { return now }

	var calls int
	load := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := c.Get(context.Background(), "k", load)
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	v, _ = c.Get(context.Background(), "k", load)
	assert.Equal(t, 1, v, "fresh entry is served from cache")

	now = now.Add(2 * time.Minute)
	v, _ = c.Get(context.Background(), "k", load)
	assert.Equal(t, 2, v, "expired entry is rebuilt")

	c.Invalidate("k")
	v, _ = c.Get(context.Background(), "k", load)
	assert.Equal(t, 3, v, "invalidated entry is rebuilt")
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	c := NewCache[string](0)
	var calls int32
	load := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	_, _ = c.Get(context.Background(), "k", load)
	_, _ = c.Get(context.Background(), "k", load)
	assert.Equal(t, int32(2), calls)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := NewCache[int](time.Minute)
	_, err := c.Get(context.Background(), "k", func(ctx context.Context) (int, error) {
		return 0, errors.New("db down")
	})
	assert.ErrorContains(t, err, "db down")

	v, err := c.Get(context.Background(), "k", func(ctx context.Context) (int, error) { return 7, nil })
	assert.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCache_SingleflightStampede(t *testing.T) {
	c := NewCache[int](time.Minute)
	var calls int32
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 1, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k", load)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls)
}
