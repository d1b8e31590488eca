// Package lock provides named exclusive locks used to serialize reconciliation
// runs of the same accounting period.
//
// Two drivers are available:
//   - local: an in-process keyed lock, enough for a single service instance.
//   - redis: a distributed lock backed by bsm/redislock, for several instances
//     sharing one database.
//
// Locks are keyed by the caller (the reconciliation service uses "reconcile:<period>"),
// so different periods never wait on each other.
//
// # Usage
//
//	locker, err := lock.New(cfg.Lock)
//	l, err := locker.Obtain(ctx, "reconcile:2026-01")
//	defer l.Release(ctx)
package lock
