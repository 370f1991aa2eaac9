package redisclient

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LocalLocker serializes critical sections inside one process. It is used when
// Redis is disabled, i.e. a single api-server instance.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
	wait  time.Duration
}

type localEntry struct {
	ch   chan struct{} // buffered(1): holding the token means holding the lock
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		locks: make(map[string]*localEntry),
		wait:  wait,
	}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	e := l.ref(key)
	defer l.unref(key)

	select {
	case e.ch <- struct{}{}:
	default:
		timer := time.NewTimer(l.wait)
		defer timer.Stop()

		select {
		case e.ch <- struct{}{}:
		case <-timer.C:
			return ErrLockNotAcquired
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		}
	}
	defer func() { <-e.ch }()

	return fn(ctx)
}

func (l *LocalLocker) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
