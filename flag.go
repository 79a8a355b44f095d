package hooks

import (
	"sync"
	"time"
)

// Flag is a boolean that resets itself to false a fixed time after it was last
// set, such as a "recently copied" indicator.
//
// Each Set restarts the single reset timer, so a reset scheduled by an earlier
// Set never clears a later one early.
type Flag struct {
	mux       sync.Mutex
	value     bool
	disposed  bool
	immediate bool
	clock     Clock
	after     time.Duration
	setAt     time.Time

	reset  func()
	cancel func()
}

// NewFlag returns a cleared flag that resets resetAfter after each Set. A
// non-positive resetAfter clears the flag as soon as it is set.
func NewFlag(resetAfter time.Duration, opts ...Option) *Flag {
	var c *Config
	return c.NewFlag(resetAfter, opts...)
}

func newFlag(conf Config, resetAfter time.Duration) *Flag {
	fl := &Flag{
		immediate: resetAfter <= 0,
		clock:     conf.Clock,
		after:     resetAfter,
	}
	fl.reset, fl.cancel = newDebounce(conf, resetAfter, fl.expire)

	return fl
}

// Set sets the flag and restarts the reset timer. It is a no-op once the flag
// has been disposed.
func (fl *Flag) Set() {
	fl.mux.Lock()
	defer fl.mux.Unlock()

	if fl.disposed {
		return
	}
	if fl.immediate {
		fl.value = false
		return
	}

	fl.value = true
	fl.setAt = fl.clock.Now()
	fl.reset()
}

// expire is called by the reset timer. A Set that slipped in between the timer
// firing and expire taking the lock keeps the flag set.
func (fl *Flag) expire() {
	fl.mux.Lock()
	defer fl.mux.Unlock()

	if fl.clock.Now().Sub(fl.setAt) < fl.after {
		return
	}
	fl.value = false
}

// Clear clears the flag immediately.
func (fl *Flag) Clear() {
	fl.mux.Lock()
	defer fl.mux.Unlock()

	fl.value = false
}

// Value reports whether the flag is set.
func (fl *Flag) Value() bool {
	fl.mux.Lock()
	defer fl.mux.Unlock()

	return fl.value
}

// Dispose cancels the pending reset. The flag keeps its current value and
// ignores further calls to Set. Dispose is idempotent.
func (fl *Flag) Dispose() {
	fl.mux.Lock()
	defer fl.mux.Unlock()

	fl.disposed = true
	fl.cancel()
}
