package testsupport

import (
	"sync"
	"testing"
	"time"
)

// ManualClock is a clock whose timers fire only when the test calls Tick.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []manualTimer
	arrived chan struct{}
}

type manualTimer struct {
	at time.Time
	ch chan time.Time
}

// NewManualClock returns a clock starting at a fixed instant.
func NewManualClock() *ManualClock {
	return &ManualClock{
		now:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		arrived: make(chan struct{}, 1024),
	}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After registers a timer that fires once Tick moves time past d.
func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.waiters = append(c.waiters, manualTimer{at: c.now.Add(d), ch: ch})
	c.mu.Unlock()
	c.arrived <- struct{}{}
	return ch
}

// Tick advances time by d and fires every timer that is due.
func (c *ManualClock) Tick(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	pending := c.waiters[:0]
	var due []chan time.Time
	for _, w := range c.waiters {
		if !w.at.After(now) {
			due = append(due, w.ch)
			continue
		}
		pending = append(pending, w)
	}
	c.waiters = pending
	c.mu.Unlock()
	for _, ch := range due {
		ch <- now
	}
}

// WaitForTimer blocks until some goroutine has called After since the last
// call, failing the test after a generous real-time bound.
func (c *ManualClock) WaitForTimer(t testing.TB) {
	t.Helper()
	select {
	case <-c.arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a timer to be registered")
	}
}

// Pending returns the number of registered timers that have not fired.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
