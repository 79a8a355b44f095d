// Package hooks provides small stateful adapters for interactive components.
//
// The root package holds the timing primitives shared by the adapters: a
// trailing-edge value throttle, a trailing debounce and a self-resetting flag.
// All of them run on an injected Clock, keep at most one timer pending at any
// time, and release that timer when disposed.
//
// The sub-packages wrap single platform capabilities (clipboard, fetch,
// geolocation, pointer hover, intersection, scroll locking, orientation and
// infinite scrolling) behind interfaces supplied by the host.
package hooks

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Throttle converts a high-frequency stream of values into one that changes at
// most once per delay window, using trailing-edge semantics: the last value
// reported during a quiet window becomes current when the window closes.
//
// Throttle is safe for concurrent use. Subscribers are notified outside the
// internal lock, so they may report new values from within the callback.
type Throttle[T any] struct {
	// Configuration
	delay    time.Duration
	clock    Clock
	log      *zerolog.Logger
	observer Observer

	// State
	mux           sync.Mutex
	value         T
	lastEmittedAt time.Time
	emitted       bool
	timer         Timer
	gen           uint64
	disposed      bool
	subs          []subscriber[T]
	nextSub       uint64
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// NewThrottle returns a throttle whose current value is initial. The first
// report always emits immediately. A negative delay is treated as zero, in
// which case every report emits immediately and no timer is ever scheduled.
func NewThrottle[T any](initial T, delay time.Duration, opts ...Option) *Throttle[T] {
	return ConfigThrottle(nil, initial, delay, opts...)
}

func newThrottle[T any](conf Config, initial T, delay time.Duration) *Throttle[T] {
	if delay < 0 {
		delay = 0
	}

	return &Throttle[T]{
		delay:    delay,
		clock:    conf.Clock,
		log:      conf.Logger,
		observer: conf.Observer,
		value:    initial,
	}
}

// Report reports a new value, timestamped with the throttle's clock.
func (th *Throttle[T]) Report(v T) {
	th.ReportAt(v, th.clock.Now())
}

// ReportAt reports a new value received at now.
//
// If at least delay has elapsed since the last emission, v becomes current
// immediately. Otherwise v replaces any pending value and is emitted once the
// window closes. Callers must pass non-decreasing timestamps; skew is not
// corrected.
//
// Reports made after Dispose are ignored.
func (th *Throttle[T]) ReportAt(v T, now time.Time) {
	th.mux.Lock()

	if th.disposed {
		th.mux.Unlock()
		th.log.Debug().Msg("report after dispose ignored")
		return
	}

	superseded := th.stop()

	remaining := th.delay - now.Sub(th.lastEmittedAt)
	if th.delay == 0 || !th.emitted || remaining <= 0 {
		subs := th.emit(v, now)
		th.mux.Unlock()

		if superseded {
			th.observer.Superseded()
		}
		th.observer.Emitted(false)
		notify(subs, v)
		return
	}

	gen := th.gen
	th.timer = th.clock.AfterFunc(remaining, func() {
		th.fire(gen, v)
	})
	th.mux.Unlock()

	if superseded {
		th.observer.Superseded()
	}
}

// Value returns the most recently emitted value.
func (th *Throttle[T]) Value() T {
	th.mux.Lock()
	defer th.mux.Unlock()

	return th.value
}

// Pending reports whether a trailing emission is scheduled.
func (th *Throttle[T]) Pending() bool {
	th.mux.Lock()
	defer th.mux.Unlock()

	return th.timer != nil
}

// Subscribe registers fn to be called with each newly emitted value. The
// returned function removes the subscription and may be called multiple times.
func (th *Throttle[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	th.mux.Lock()
	defer th.mux.Unlock()

	th.nextSub++
	id := th.nextSub
	th.subs = append(th.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		th.mux.Lock()
		defer th.mux.Unlock()

		for i, s := range th.subs {
			if s.id == id {
				th.subs = append(th.subs[:i:i], th.subs[i+1:]...)
				return
			}
		}
	}
}

// Dispose cancels any pending emission and drops all subscribers. The current
// value is left untouched. Dispose is idempotent.
func (th *Throttle[T]) Dispose() {
	th.mux.Lock()

	if th.disposed {
		th.mux.Unlock()
		return
	}

	th.disposed = true
	pending := th.stop()
	th.subs = nil
	th.mux.Unlock()

	th.observer.Disposed(pending)
}

// fire is called by the pending timer. A timer that was superseded or
// cancelled after it started running carries a stale generation and is
// discarded.
func (th *Throttle[T]) fire(gen uint64, v T) {
	th.mux.Lock()

	if th.disposed || gen != th.gen {
		th.mux.Unlock()
		return
	}

	th.timer = nil
	subs := th.emit(v, th.clock.Now())
	th.mux.Unlock()

	th.observer.Emitted(true)
	notify(subs, v)
}

// stop cancels the pending timer, if any, and invalidates any callback that
// is already running. It should only be called while the mutex is locked.
func (th *Throttle[T]) stop() bool {
	th.gen++

	if th.timer == nil {
		return false
	}

	th.timer.Stop()
	th.timer = nil

	return true
}

// emit sets the current value and returns a snapshot of the subscribers to
// notify. It should only be called while the mutex is locked.
func (th *Throttle[T]) emit(v T, now time.Time) []subscriber[T] {
	th.value = v
	th.lastEmittedAt = now
	th.emitted = true

	if len(th.subs) == 0 {
		return nil
	}

	return append([]subscriber[T](nil), th.subs...)
}

func notify[T any](subs []subscriber[T], v T) {
	for _, s := range subs {
		s.fn(v)
	}
}
