package main

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

var ErrMemcachedClosed = errors.New("memcached closed")

type cached[V any] struct {
	value    V
	expireAt int64
}

// Memcached is an in-process TTL cache. Get does not extend the expiry,
// Set and Touch do.
type Memcached[V any] struct {
	mu          sync.RWMutex
	cleanerOnce sync.Once
	cleanerCh   chan struct{}
	cleanerDone chan struct{}
	items       map[string]cached[V]
	ttlTimeout  time.Duration
	inShutdown  atomic.Bool
}

func NewMemcached[V any](ttlTimeout, cleanupTimeout time.Duration) *Memcached[V] {
	mc := &Memcached[V]{
		cleanerCh:   make(chan struct{}),
		cleanerDone: make(chan struct{}),
		items:       make(map[string]cached[V]),
		ttlTimeout:  ttlTimeout,
	}

	go func() {
		defer close(mc.cleanerDone)
		ticker := time.NewTicker(cleanupTimeout)
		defer ticker.Stop()

		for {
			select {
			case <-mc.cleanerCh:
				return
			case <-ticker.C:
				mc.cleanExpiredItems()
			}
		}
	}()
	return mc
}

// Set stores value under key. Once shutdown has started only existing keys
// are refreshed.
func (mc *Memcached[V]) Set(key string, value V) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	_, isExists := mc.items[key]
	if mc.inShutdown.Load() && !isExists {
		return false
	}

	mc.items[key] = cached[V]{
		value:    value,
		expireAt: time.Now().Add(mc.ttlTimeout).UnixNano(),
	}
	return true
}

func (mc *Memcached[V]) Get(key string) (V, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	var zero V
	item, exists := mc.items[key]
	if !exists {
		return zero, false
	}
	if time.Now().UnixNano() > item.expireAt {
		return zero, false
	}
	return item.value, true
}

// Touch pushes the expiry of a live key forward.
func (mc *Memcached[V]) Touch(key string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, exists := mc.items[key]
	now := time.Now()
	if !exists || now.UnixNano() > item.expireAt {
		return false
	}
	item.expireAt = now.Add(mc.ttlTimeout).UnixNano()
	mc.items[key] = item
	return true
}

func (mc *Memcached[V]) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.items)
}

const shutdownIntervalMax = 500 * time.Millisecond

// Shutdown stops accepting new keys and waits for the live ones to expire.
func (mc *Memcached[V]) Shutdown(ctx context.Context) error {
	mc.inShutdown.Store(true)
	mc.closeCleaner()

	intervalBase := time.Millisecond
	nextInterval := func() time.Duration {
		interval := intervalBase + time.Duration(rand.Intn(int(intervalBase/10)))

		intervalBase *= 2
		if intervalBase > shutdownIntervalMax {
			intervalBase = shutdownIntervalMax
		}
		return interval
	}

	timer := time.NewTimer(nextInterval())
	defer timer.Stop()
	for {
		mc.cleanExpiredItems()
		if mc.IsEmpty() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(nextInterval())
		}
	}
}

// Close drops every key at once.
func (mc *Memcached[V]) Close() error {
	if mc.inShutdown.Swap(true) {
		mc.closeCleaner()
		return ErrMemcachedClosed
	}
	mc.closeCleaner()

	mc.mu.Lock()
	defer mc.mu.Unlock()
	clear(mc.items)
	return nil
}

func (mc *Memcached[V]) cleanExpiredItems() {
	now := time.Now().UnixNano()
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for k, v := range mc.items {
		if now > v.expireAt {
			delete(mc.items, k)
		}
	}
}

func (mc *Memcached[V]) IsEmpty() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.items) == 0
}

func (mc *Memcached[V]) closeCleaner() {
	mc.cleanerOnce.Do(func() {
		close(mc.cleanerCh)
	})
	<-mc.cleanerDone
}
