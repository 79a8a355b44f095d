package hooks

import (
	"sync"
	"time"
)

// Debounce wraps f so that a burst of calls results in a single call to f,
// made once wait has passed on the configured clock without another call.
// Each call restarts the one pending timer.
//
// cancel drops the pending call, if any; calling it is optional. Either
// function may be called concurrently and repeatedly. A non-positive wait
// returns f itself, called synchronously.
//
// f is invoked on the clock's timer goroutine, so it must not block.
func Debounce(
	wait time.Duration,
	f func(),
	opts ...Option,
) (debounced func(), cancel func()) {
	var c *Config
	return c.NewDebounce(wait, f, opts...)
}

func newDebounce(
	conf Config,
	wait time.Duration,
	f func(),
) (debounced func(), cancel func()) {
	if wait <= 0 {
		return f, func() {}
	}

	var mux sync.Mutex
	var timer Timer
	var gen uint64

	// stop must be called with mux held.
	stop := func() {
		gen++
		if timer != nil {
			timer.Stop()
			timer = nil
		}
	}

	debounced = func() {
		mux.Lock()
		defer mux.Unlock()

		stop()

		g := gen
		timer = conf.Clock.AfterFunc(wait, func() {
			mux.Lock()
			if g != gen {
				mux.Unlock()
				return
			}
			timer = nil
			mux.Unlock()

			f()
		})
	}

	cancel = func() {
		mux.Lock()
		defer mux.Unlock()

		stop()
	}

	return debounced, cancel
}
