// Package infinitescroll invokes a loader when a scrolled view gets close to
// its end.
package infinitescroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mysticwillz/hooks"
)

const (
	// DefaultThreshold is the distance from the end, in pixels, at which
	// loading starts.
	DefaultThreshold = 100
	// DefaultSettleDelay is how long loading stays set after the callback
	// returns.
	DefaultSettleDelay = 500 * time.Millisecond
)

var (
	// ErrCallbackPanic wraps a panic recovered from the callback.
	ErrCallbackPanic = errors.New("callback panicked")
)

// Metrics is the scroll position of a view.
type Metrics struct {
	// InnerHeight is the height of the visible area.
	InnerHeight float64 `json:"innerHeight"`
	// ScrollTop is how far the view is scrolled from the top.
	ScrollTop float64 `json:"scrollTop"`
	// OffsetHeight is the total height of the content.
	OffsetHeight float64 `json:"offsetHeight"`
}

// NearEnd reports whether the bottom of the visible area is within threshold
// of the end of the content.
func (m Metrics) NearEnd(threshold float64) bool {
	return m.InnerHeight+m.ScrollTop >= m.OffsetHeight-threshold
}

// Option configures a Scroller.
type Option func(*options)

type options struct {
	threshold float64
	settle    time.Duration
	hookOpts  []hooks.Option
	logger    *zerolog.Logger
}

// WithThreshold sets the distance from the end at which loading starts.
func WithThreshold(px float64) Option {
	return func(o *options) {
		o.threshold = px
	}
}

// WithSettleDelay sets how long loading stays set after the callback returns.
func WithSettleDelay(d time.Duration) Option {
	return func(o *options) {
		o.settle = d
	}
}

// WithHookOptions passes options to the settle flag, e.g. a clock.
func WithHookOptions(opts ...hooks.Option) Option {
	return func(o *options) {
		o.hookOpts = append(o.hookOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// Scroller calls its callback when the view is scrolled near the end, and
// suppresses further calls while the callback runs and for a settle delay
// afterwards.
//
// Errors and panics from the callback are logged and never propagated, and
// loading is always cleared afterwards so later scrolls are not blocked.
type Scroller struct {
	cb        func(ctx context.Context) error
	threshold float64
	settle    *hooks.Flag
	log       *zerolog.Logger

	mux     sync.Mutex
	running bool
	closed  bool
}

// New returns a Scroller invoking cb.
func New(cb func(ctx context.Context) error, opts ...Option) *Scroller {
	o := options{threshold: DefaultThreshold, settle: DefaultSettleDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := log.With().Str("component", "infinitescroll").Logger()
		o.logger = &l
	}

	return &Scroller{
		cb:        cb,
		threshold: o.threshold,
		settle:    hooks.NewFlag(o.settle, o.hookOpts...),
		log:       o.logger,
	}
}

// HandleScroll processes one scroll event and reports whether the callback
// was invoked. The callback runs on the calling goroutine.
func (s *Scroller) HandleScroll(ctx context.Context, m Metrics) bool {
	if !m.NearEnd(s.threshold) {
		return false
	}

	s.mux.Lock()
	if s.closed || s.running || s.settle.Value() {
		s.mux.Unlock()
		return false
	}
	s.running = true
	s.mux.Unlock()

	if err := s.invoke(ctx); err != nil {
		s.log.Err(err).Msg("infinite scroll callback failed")
	}

	s.mux.Lock()
	s.running = false
	s.settle.Set()
	s.mux.Unlock()

	return true
}

func (s *Scroller) invoke(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()

	return s.cb(ctx)
}

// Watch handles scroll events until ctx is done or events is closed.
func (s *Scroller) Watch(ctx context.Context, events <-chan Metrics) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-events:
			if !ok {
				return nil
			}
			s.HandleScroll(ctx, m)
		}
	}
}

// Loading reports whether the callback is running or settling.
func (s *Scroller) Loading() bool {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.running || s.settle.Value()
}

// Close stops handling scroll events, clears loading and cancels the pending
// settle reset. It is safe to call multiple times.
func (s *Scroller) Close() {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.closed = true
	s.settle.Clear()
	s.settle.Dispose()
}
