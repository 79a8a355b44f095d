// Package fakeclock provides a manually advanced clock for deterministic tests
// of timer-driven code.
package fakeclock

import (
	"sort"
	"sync"
	"time"

	"github.com/mysticwillz/hooks"
)

// Epoch is the instant a new Clock starts at.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock is a hooks.Clock whose time only moves when Advance or Set is called.
// Timers fire synchronously on the goroutine that advances the clock, in order
// of their deadline, and may schedule further timers while firing.
type Clock struct {
	mux    sync.Mutex
	now    time.Time
	seq    uint64
	timers []*timer
	fired  int
}

type timer struct {
	c        *Clock
	deadline time.Time
	seq      uint64
	f        func()
}

var _ hooks.Clock = (*Clock)(nil)

// New returns a clock set to Epoch.
func New() *Clock {
	return NewAt(Epoch)
}

// NewAt returns a clock set to t.
func NewAt(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.now
}

// Since returns the fake time elapsed since Epoch.
func (c *Clock) Since() time.Duration {
	return c.Now().Sub(Epoch)
}

// At returns Epoch plus d, convenient for explicit timestamps.
func At(d time.Duration) time.Time {
	return Epoch.Add(d)
}

// AfterFunc schedules f to run once the clock has been advanced by d.
func (c *Clock) AfterFunc(d time.Duration, f func()) hooks.Timer {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.seq++
	t := &timer{c: c, deadline: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves the clock forward by d, firing every timer that becomes due.
func (c *Clock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// Set moves the clock to t, firing every timer that becomes due. Each timer
// observes Now as its own deadline while it runs.
func (c *Clock) Set(t time.Time) {
	for {
		c.mux.Lock()
		next := c.nextDue(t)
		if next == nil {
			if t.After(c.now) {
				c.now = t
			}
			c.mux.Unlock()
			return
		}
		c.remove(next)
		if next.deadline.After(c.now) {
			c.now = next.deadline
		}
		c.fired++
		c.mux.Unlock()

		next.f()
	}
}

// Pending returns the number of timers that are scheduled and not stopped.
func (c *Clock) Pending() int {
	c.mux.Lock()
	defer c.mux.Unlock()

	return len(c.timers)
}

// Fired returns the number of timers that have fired so far.
func (c *Clock) Fired() int {
	c.mux.Lock()
	defer c.mux.Unlock()

	return c.fired
}

func (t *timer) Stop() bool {
	t.c.mux.Lock()
	defer t.c.mux.Unlock()

	return t.c.remove(t)
}

// nextDue returns the earliest timer due at or before t. It should only be
// called while the mutex is locked.
func (c *Clock) nextDue(t time.Time) *timer {
	sort.SliceStable(c.timers, func(i, j int) bool {
		a, b := c.timers[i], c.timers[j]
		if a.deadline.Equal(b.deadline) {
			return a.seq < b.seq
		}
		return a.deadline.Before(b.deadline)
	})

	if len(c.timers) == 0 || c.timers[0].deadline.After(t) {
		return nil
	}

	return c.timers[0]
}

// remove should only be called while the mutex is locked.
func (c *Clock) remove(t *timer) bool {
	for i, x := range c.timers {
		if x == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}

	return false
}
