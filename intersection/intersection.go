// Package intersection reports changes in the visibility of targets within a
// root rectangle, such as elements within a scrolling viewport.
//
// Layout is supplied by the host through rectangle functions and re-read on
// every Update, which the host calls after scrolling or resizing.
package intersection

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mysticwillz/hooks"
)

var (
	// ErrInvalidThreshold is returned for thresholds outside [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be within [0, 1]")
	// ErrNoRoot is returned when no root rectangle function is given.
	ErrNoRoot = errors.New("root rectangle is required")
)

// Entry describes the intersection of one target with the root at a point in
// time.
type Entry struct {
	ID             string    `json:"id"`
	Target         Rect      `json:"target"`
	Root           Rect      `json:"root"`
	Intersection   Rect      `json:"intersection"`
	Ratio          float64   `json:"ratio"`
	IsIntersecting bool      `json:"isIntersecting"`
	Time           time.Time `json:"time"`
}

// Option configures an Observer.
type Option func(*Observer)

// WithRootMargin grows the root rectangle by m before intersecting.
func WithRootMargin(m Margin) Option {
	return func(o *Observer) {
		o.margin = m
	}
}

// WithThresholds sets the visibility ratios at which the callback fires. The
// default is a single threshold of 0.
func WithThresholds(t ...float64) Option {
	return func(o *Observer) {
		o.thresholds = append([]float64(nil), t...)
	}
}

// WithClock sets the clock used to timestamp entries.
func WithClock(c hooks.Clock) Option {
	return func(o *Observer) {
		o.clock = c
	}
}

// Observer watches a set of targets against one root.
type Observer struct {
	root       func() Rect
	callback   func([]Entry)
	margin     Margin
	thresholds []float64
	clock      hooks.Clock

	mux          sync.Mutex
	targets      map[string]*target
	order        []string
	disconnected bool
}

type target struct {
	rect             func() Rect
	prevIndex        int
	prevIntersecting bool
	last             Entry
	seen             bool
}

// New returns an Observer calling callback with the entries whose threshold
// bucket or intersecting state changed during an Update.
func New(root func() Rect, callback func([]Entry), opts ...Option) (*Observer, error) {
	if root == nil {
		return nil, ErrNoRoot
	}

	o := &Observer{
		root:     root,
		callback: callback,
		targets:  map[string]*target{},
	}
	for _, opt := range opts {
		opt(o)
	}

	if len(o.thresholds) == 0 {
		o.thresholds = []float64{0}
	}
	for _, t := range o.thresholds {
		if t < 0 || t > 1 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, t)
		}
	}
	slices.Sort(o.thresholds)
	o.thresholds = slices.Compact(o.thresholds)

	if o.clock == nil {
		o.clock = hooks.RealClock()
	}

	return o, nil
}

// Observe starts watching the target with the given id. The next Update
// always reports it. Observing an id again replaces its rectangle function.
func (o *Observer) Observe(id string, rect func() Rect) {
	o.mux.Lock()
	defer o.mux.Unlock()

	if o.disconnected {
		return
	}
	if _, ok := o.targets[id]; !ok {
		o.order = append(o.order, id)
	}
	o.targets[id] = &target{rect: rect, prevIndex: -1}
}

// Unobserve stops watching the target with the given id.
func (o *Observer) Unobserve(id string) {
	o.mux.Lock()
	defer o.mux.Unlock()

	o.remove(id)
}

// Disconnect stops watching every target. Further Observe calls are ignored.
func (o *Observer) Disconnect() {
	o.mux.Lock()
	defer o.mux.Unlock()

	o.disconnected = true
	o.targets = map[string]*target{}
	o.order = nil
}

// Entry returns the last computed entry for id.
func (o *Observer) Entry(id string) (Entry, bool) {
	o.mux.Lock()
	defer o.mux.Unlock()

	t, ok := o.targets[id]
	if !ok || !t.seen {
		return Entry{}, false
	}

	return t.last, true
}

// Update re-reads the layout and notifies the callback of every change. The
// callback runs outside the observer's lock.
func (o *Observer) Update() {
	o.mux.Lock()

	if o.disconnected || len(o.order) == 0 {
		o.mux.Unlock()
		return
	}

	root := o.root()
	now := o.clock.Now()

	var changed []Entry
	for _, id := range o.order {
		t := o.targets[id]

		e := Compute(t.rect(), root, o.margin)
		e.ID = id
		e.Time = now

		idx := thresholdIndex(o.thresholds, e.Ratio)
		if !e.IsIntersecting {
			idx = 0
		}

		if idx != t.prevIndex || e.IsIntersecting != t.prevIntersecting {
			changed = append(changed, e)
		}

		t.prevIndex = idx
		t.prevIntersecting = e.IsIntersecting
		t.last = e
		t.seen = true
	}
	o.mux.Unlock()

	if len(changed) > 0 && o.callback != nil {
		o.callback(changed)
	}
}

// remove should only be called while the mutex is locked.
func (o *Observer) remove(id string) {
	if _, ok := o.targets[id]; !ok {
		return
	}

	delete(o.targets, id)
	o.order = slices.DeleteFunc(o.order, func(x string) bool {
		return x == id
	})
}
