package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func TestSixthCommandInWindowIsDenied(t *testing.T) {
	l := New(NewMemoryStore(), 5, time.Minute)

	for i := 1; i <= 5; i++ {
		if !l.Allow("27821234567", t0.Add(time.Duration(i)*time.Second)) {
			t.Fatalf("command %d should be allowed", i)
		}
	}
	if l.Allow("27821234567", t0.Add(10*time.Second)) {
		t.Error("6th command within 60s should be denied")
	}
	if l.Allow("27821234567", t0.Add(20*time.Second)) {
		t.Error("7th command within 60s should be denied")
	}
}

func TestWindowResetsAtDeadline(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 5, time.Minute)

	for i := 0; i < 7; i++ {
		l.Allow("a", t0)
	}
	if l.Allow("a", t0.Add(time.Minute-time.Nanosecond)) {
		t.Error("just before the deadline should still be denied")
	}
	if !l.Allow("a", t0.Add(time.Minute)) {
		t.Error("at the deadline the window should reset")
	}

	// the reset restarted the count at 1: four more fit in the new window
	for i := 2; i <= 5; i++ {
		if !l.Allow("a", t0.Add(time.Minute+time.Second)) {
			t.Fatalf("command %d after reset should be allowed", i)
		}
	}
	if l.Allow("a", t0.Add(time.Minute+2*time.Second)) {
		t.Error("6th command of the new window should be denied")
	}
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l := New(nil, 1, time.Minute)
	if !l.Allow("a", t0) {
		t.Fatal("first a should pass")
	}
	if l.Allow("a", t0) {
		t.Error("second a should be denied")
	}
	if !l.Allow("b", t0) {
		t.Error("b must not be affected by a")
	}
}

func TestNewDefaults(t *testing.T) {
	l := New(nil, 0, 0)
	if l.limit != DefaultLimit || l.window != DefaultWindow {
		t.Errorf("defaults = %d/%v; want %d/%v", l.limit, l.window, DefaultLimit, DefaultWindow)
	}
}

func TestSweepDropsExpiredWindows(t *testing.T) {
	store := NewMemoryStore()
	store.Increment("old", t0, time.Minute)
	store.Increment("new", t0.Add(50*time.Second), time.Minute)

	if n := store.Sweep(t0.Add(time.Minute)); n != 1 {
		t.Errorf("Sweep removed %d; want 1", n)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d; want 1", store.Len())
	}
	if got := store.Increment("old", t0.Add(time.Minute), time.Minute); got != 1 {
		t.Errorf("swept key restarted at %d; want 1", got)
	}
}

func TestConcurrentIncrementCountsEveryMessage(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 50, time.Minute)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("same", t0) {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed %d concurrent commands; want exactly 50", allowed)
	}
}
