package intersection

import (
	"sync"
)

const trackerID = "target"

// Tracker follows a single target with its own observer and keeps the latest
// entry.
type Tracker struct {
	obs *Observer

	mux   sync.Mutex
	entry *Entry
}

// NewTracker returns a Tracker for target within root.
func NewTracker(root, target func() Rect, opts ...Option) (*Tracker, error) {
	t := &Tracker{}

	obs, err := New(root, t.onChange, opts...)
	if err != nil {
		return nil, err
	}
	obs.Observe(trackerID, target)
	t.obs = obs

	return t, nil
}

func (t *Tracker) onChange(entries []Entry) {
	t.mux.Lock()
	defer t.mux.Unlock()

	e := entries[0]
	t.entry = &e
}

// Update re-reads the layout.
func (t *Tracker) Update() {
	t.obs.Update()
}

// Entry returns the entry of the last visibility change, or nil before the
// first Update.
func (t *Tracker) Entry() *Entry {
	t.mux.Lock()
	defer t.mux.Unlock()

	if t.entry == nil {
		return nil
	}
	e := *t.entry

	return &e
}

// Close disconnects the observer. It is safe to call multiple times.
func (t *Tracker) Close() {
	t.obs.Disconnect()
}
