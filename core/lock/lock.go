package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	DriverLocal = "local"
	DriverRedis = "redis"
)

// ErrNotObtained is returned when a lock is still held after all retries.
var ErrNotObtained = errors.New("lock not obtained")

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out exclusive locks keyed by name.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}

// New builds the locker selected by cfg.Driver.
func New(cfg Config) (Locker, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverLocal, "":
		return NewLocal(), nil
	case DriverRedis:
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unsupported lock driver %q", cfg.Driver)
	}
}

// LocalLocker serializes holders of the same key within one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an in-process locker.
func NewLocal() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Obtain blocks until key is free or ctx is done.
func (l *LocalLocker) Obtain(ctx context.Context, key string) (Lock, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return &localLock{owner: l, key: key, slot: s}, nil
	case <-ctx.Done():
		l.drop(key, s)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotObtained, key, ctx.Err())
	}
}

func (l *LocalLocker) drop(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

type localLock struct {
	owner *LocalLocker
	key   string
	slot  *slot
	once  sync.Once
}

func (l *localLock) Release(ctx context.Context) error {
	l.once.Do(func() {
		<-l.slot.ch
		l.owner.drop(l.key, l.slot)
	})
	return nil
}

// RedisLocker coordinates holders across processes through redis.
// A held lock is refreshed every half TTL until released, so the TTL only
// bounds how long a crashed holder blocks the key, not how long a run may take.
type RedisLocker struct {
	obtain  obtainFunc
	ttl     time.Duration
	backoff time.Duration
	retries int
}

type obtainFunc func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error)

// heldLock is the part of *redislock.Lock the locker drives.
type heldLock interface {
	Refresh(ctx context.Context, ttl time.Duration, opt *redislock.Options) error
	Release(ctx context.Context) error
}

// NewRedis connects to redis and verifies it with a ping.
func NewRedis(cfg Config) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddress,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddress, err)
	}

	client := redislock.New(rdb)
	return newRedisLocker(func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (heldLock, error) {
		l, err := client.Obtain(ctx, key, ttl, opt)
		if err != nil {
			return nil, err
		}
		return l, nil
	}, cfg), nil
}

func newRedisLocker(obtain obtainFunc, cfg Config) *RedisLocker {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	backoff := time.Duration(cfg.RetryMillis) * time.Millisecond
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &RedisLocker{obtain: obtain, ttl: ttl, backoff: backoff, retries: retries}
}

// Obtain acquires key, retrying with linear backoff while another holder has it.
func (r *RedisLocker) Obtain(ctx context.Context, key string) (Lock, error) {
	retry := redislock.LimitRetry(redislock.LinearBackoff(r.backoff), r.retries)
	l, err := r.obtain(ctx, key, r.ttl, &redislock.Options{RetryStrategy: retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	rl := &redisLock{held: l, key: key, stop: make(chan struct{}), done: make(chan struct{})}
	go rl.keepAlive(r.ttl)
	return rl, nil
}

type redisLock struct {
	held heldLock
	key  string
	stop chan struct{}
	done chan struct{}
	once sync.Once
	// lost is set by keepAlive before done closes.
	lost error
}

func (l *redisLock) keepAlive(ttl time.Duration) {
	defer close(l.done)
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), ttl/2)
			err := l.held.Refresh(ctx, ttl, nil)
			cancel()
			if err != nil {
				l.lost = fmt.Errorf("lock %s lost before release: %w", l.key, err)
				return
			}
		}
	}
}

// Release stops refreshing and frees the key. It reports a lock lost mid-hold.
func (l *redisLock) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		close(l.stop)
		<-l.done
		if l.lost != nil {
			err = l.lost
			return
		}
		if rerr := l.held.Release(ctx); rerr != nil {
			err = fmt.Errorf("failed to release lock %s: %w", l.key, rerr)
		}
	})
	return err
}
