package hooks

// Observer receives notifications about throttle activity. Implementations
// must be safe for concurrent use and must not call back into the throttle.
type Observer interface {
	// Emitted is called each time the current value changes. trailing is true
	// when the value was emitted by the pending timer rather than directly by
	// a report.
	Emitted(trailing bool)
	// Superseded is called when a report replaces a pending emission.
	Superseded()
	// Disposed is called once, when the throttle is disposed. pending reports
	// whether an emission was cancelled.
	Disposed(pending bool)
}

type nopObserver struct{}

func (nopObserver) Emitted(bool)  {}
func (nopObserver) Superseded()   {}
func (nopObserver) Disposed(bool) {}
