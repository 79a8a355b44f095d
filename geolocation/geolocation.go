// Package geolocation performs single-shot position lookups and remembers the
// last known position.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUnsupported is returned when the host has no geolocation capability.
	ErrUnsupported = errors.New("geolocation not supported")
)

// Coordinates is a position on Earth. Optional readings are nil when the
// locator does not provide them.
type Coordinates struct {
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Accuracy         float64   `json:"accuracy"`
	Altitude         *float64  `json:"altitude,omitempty"`
	AltitudeAccuracy *float64  `json:"altitudeAccuracy,omitempty"`
	Heading          *float64  `json:"heading,omitempty"`
	Speed            *float64  `json:"speed,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Locator looks up the current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// LocatorFunc adapts a function to a Locator.
type LocatorFunc func(ctx context.Context) (Coordinates, error)

// CurrentPosition calls f(ctx).
func (f LocatorFunc) CurrentPosition(ctx context.Context) (Coordinates, error) {
	return f(ctx)
}

// Tracker keeps the last position returned by its locator.
type Tracker struct {
	loc Locator
	log *zerolog.Logger

	mux   sync.Mutex
	pos   Coordinates
	known bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) {
		t.log = &l
	}
}

// New returns a Tracker using loc. A nil loc behaves like a host without
// geolocation.
func New(loc Locator, opts ...Option) *Tracker {
	t := &Tracker{loc: loc}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		l := log.With().Str("component", "geolocation").Logger()
		t.log = &l
	}

	return t
}

// Locate asks the locator for the current position once. On failure the last
// known position is kept.
func (t *Tracker) Locate(ctx context.Context) error {
	if t.loc == nil {
		t.log.Warn().Msg("geolocation not supported")
		return ErrUnsupported
	}

	pos, err := t.loc.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		t.log.Err(err).Msg("failed to get current position")
		return fmt.Errorf("get current position: %w", err)
	}

	t.mux.Lock()
	defer t.mux.Unlock()

	t.pos = pos
	t.known = true

	return nil
}

// Position returns the last known position, if any.
func (t *Tracker) Position() (Coordinates, bool) {
	t.mux.Lock()
	defer t.mux.Unlock()

	return t.pos, t.known
}
