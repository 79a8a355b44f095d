// Package hover tracks whether the pointer is over an element.
package hover

import (
	"sync"
)

// Target is an element that reports pointer enter and leave events. Each
// registration returns a function that removes it.
type Target interface {
	OnPointerEnter(fn func()) (off func())
	OnPointerLeave(fn func()) (off func())
}

// Hover tracks the hovered state of the attached target.
type Hover struct {
	mux     sync.Mutex
	hovered bool
	gen     uint64
	offs    []func()
}

// New returns a Hover attached to t. A nil t leaves it detached.
func New(t Target) *Hover {
	h := &Hover{}
	if t != nil {
		h.Attach(t)
	}

	return h
}

// Attach starts tracking t, detaching from the previous target first. The
// hovered state starts false. The target is never called with the internal
// lock held, so it may fire events synchronously.
func (h *Hover) Attach(t Target) {
	h.mux.Lock()
	old := h.detach()
	gen := h.gen
	h.mux.Unlock()

	release(old)

	set := func(v bool) func() {
		return func() {
			h.mux.Lock()
			defer h.mux.Unlock()

			// Events from a target we already left are dropped.
			if gen == h.gen {
				h.hovered = v
			}
		}
	}

	offs := []func(){
		t.OnPointerEnter(set(true)),
		t.OnPointerLeave(set(false)),
	}

	h.mux.Lock()
	if gen != h.gen {
		// Closed or re-attached while registering.
		h.mux.Unlock()
		release(offs)
		return
	}
	h.offs = offs
	h.mux.Unlock()
}

// Hovered reports whether the pointer is over the attached target.
func (h *Hover) Hovered() bool {
	h.mux.Lock()
	defer h.mux.Unlock()

	return h.hovered
}

// Close detaches from the current target. It is safe to call multiple times.
func (h *Hover) Close() {
	h.mux.Lock()
	old := h.detach()
	h.mux.Unlock()

	release(old)
}

// detach invalidates the current registrations and returns them for release.
// It should only be called while the mutex is locked.
func (h *Hover) detach() []func() {
	h.gen++
	offs := h.offs
	h.offs = nil
	h.hovered = false

	return offs
}

func release(offs []func()) {
	for _, off := range offs {
		if off != nil {
			off()
		}
	}
}
