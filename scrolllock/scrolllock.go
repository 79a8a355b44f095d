// Package scrolllock disables scrolling of a document body for as long as a
// lock is held.
package scrolllock

import (
	"sync"
)

const (
	overflow = "overflow"
	hidden   = "hidden"
)

// Style reads and writes inline style properties of an element.
type Style interface {
	Get(prop string) string
	Set(prop, value string)
}

// Lock hides overflow on style and returns a function restoring the value it
// had before. The unlock function is idempotent.
func Lock(style Style) (unlock func()) {
	original := style.Get(overflow)
	style.Set(overflow, hidden)

	var once sync.Once
	return func() {
		once.Do(func() {
			style.Set(overflow, original)
		})
	}
}

// MapStyle is an in-memory Style for headless hosts.
type MapStyle struct {
	mux   sync.Mutex
	props map[string]string
}

// Get returns the value of prop, or "" if unset.
func (s *MapStyle) Get(prop string) string {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.props[prop]
}

// Set sets prop to value. An empty value removes the property.
func (s *MapStyle) Set(prop, value string) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if value == "" {
		delete(s.props, prop)
		return
	}
	if s.props == nil {
		s.props = map[string]string{}
	}
	s.props[prop] = value
}
