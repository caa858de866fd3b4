// Package ratelimit bounds how many commands one identity may send.
//
// It is a fixed-window counter: the first message opens a window of
// Window length, every message in the window increments the count, and a
// message arriving at or after the window deadline opens a fresh window with
// count 1. Nothing is smoothed and nothing is shared between processes unless
// a shared Store is plugged in.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultLimit  = 5
	DefaultWindow = 60 * time.Second
)

// Store keeps one counter per key. Increment must be atomic per key: it
// returns the count after counting the current message, resetting it to 1
// when now has reached the stored deadline.
type Store interface {
	Increment(key string, now time.Time, window time.Duration) int
}

// Limiter denies an identity once it sends more than Limit commands inside
// one window.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

// New returns a Limiter. Non-positive limit or window fall back to 5 per 60s.
func New(store Store, limit int, window time.Duration) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow counts one command for identity and reports whether it may proceed.
// Denied commands still count.
func (l *Limiter) Allow(identity string, now time.Time) bool {
	return l.store.Increment(identity, now, l.window) <= l.limit
}

// MemoryStore is the in-process Store. State is lost on restart.
type MemoryStore struct {
	windows sync.Map // key -> *window
}

type window struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
	swept   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Increment(key string, now time.Time, length time.Duration) int {
	for {
		v, loaded := s.windows.LoadOrStore(key, &window{count: 1, resetAt: now.Add(length)})
		if !loaded {
			return 1
		}

		w := v.(*window)
		w.mu.Lock()
		if w.swept {
			// lost a race with Sweep, the key is free again
			w.mu.Unlock()
			continue
		}
		if !now.Before(w.resetAt) {
			w.count = 1
			w.resetAt = now.Add(length)
		} else {
			w.count++
		}
		count := w.count
		w.mu.Unlock()
		return count
	}
}

// Sweep drops windows whose deadline has passed. A swept key behaves exactly
// like an expired one on its next message, so Sweep only bounds memory.
func (s *MemoryStore) Sweep(now time.Time) int {
	removed := 0
	s.windows.Range(func(key, v any) bool {
		w := v.(*window)
		w.mu.Lock()
		if !now.Before(w.resetAt) {
			w.swept = true
			s.windows.CompareAndDelete(key, v)
			removed++
		}
		w.mu.Unlock()
		return true
	})
	return removed
}

// Len returns the number of tracked identities.
func (s *MemoryStore) Len() int {
	n := 0
	s.windows.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
