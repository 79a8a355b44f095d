// Package orientation tracks the screen orientation.
package orientation

import (
	"sync"
)

// State is a screen orientation, e.g. {"portrait-primary", 0}.
type State struct {
	Type  string `json:"type"`
	Angle int    `json:"angle"`
}

// Unknown is reported when the host cannot tell the orientation.
var Unknown = State{Type: "unknown", Angle: 0}

// Screen exposes the orientation of a display and notifies of changes.
type Screen interface {
	// Orientation returns the current orientation, or false if unknown.
	Orientation() (State, bool)
	// OnChange registers fn to be called on every orientation change and
	// returns a function removing it.
	OnChange(fn func()) (off func())
}

// Tracker keeps the current orientation of a screen.
type Tracker struct {
	screen Screen

	mux     sync.Mutex
	current State
	off     func()
	closed  bool
}

// New returns a Tracker reading screen on every change and once right after
// subscribing. A nil screen yields Unknown.
func New(screen Screen) *Tracker {
	t := &Tracker{screen: screen, current: Unknown}
	if screen == nil {
		return t
	}

	off := screen.OnChange(t.refresh)
	t.mux.Lock()
	t.off = off
	t.mux.Unlock()

	t.refresh()

	return t
}

func read(screen Screen) State {
	s, ok := screen.Orientation()
	if !ok {
		return Unknown
	}

	return s
}

func (t *Tracker) refresh() {
	s := read(t.screen)

	t.mux.Lock()
	defer t.mux.Unlock()

	if t.closed {
		return
	}
	t.current = s
}

// Current returns the last known orientation.
func (t *Tracker) Current() State {
	t.mux.Lock()
	defer t.mux.Unlock()

	return t.current
}

// Close stops listening for changes. It is safe to call multiple times.
func (t *Tracker) Close() {
	t.mux.Lock()
	off := t.off
	t.off = nil
	t.closed = true
	t.mux.Unlock()

	if off != nil {
		off()
	}
}
