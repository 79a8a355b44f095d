// Package clipboard copies text to the system clipboard and tracks whether a
// copy happened recently.
package clipboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mysticwillz/hooks"
)

// DefaultResetDelay is how long Copied stays true after a successful copy.
const DefaultResetDelay = 2 * time.Second

var (
	// ErrUnsupported is returned when no clipboard is available on the host.
	ErrUnsupported = errors.New("clipboard not supported")
)

// Writer writes text to a clipboard.
type Writer interface {
	WriteAll(text string) error
}

// WriterFunc adapts a function to a Writer.
type WriterFunc func(text string) error

// WriteAll calls f(text).
func (f WriterFunc) WriteAll(text string) error {
	return f(text)
}

type system struct{}

func (system) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}

	return clipboard.WriteAll(text)
}

// System returns a Writer backed by the operating system clipboard.
func System() Writer {
	return system{}
}

// Copier copies text and exposes a "recently copied" flag that clears itself
// after a fixed delay.
type Copier struct {
	w      Writer
	copied *hooks.Flag
	log    *zerolog.Logger
}

// Option configures a Copier.
type Option func(*options)

type options struct {
	resetDelay time.Duration
	hookOpts   []hooks.Option
	logger     *zerolog.Logger
}

// WithResetDelay sets how long Copied stays true after a copy.
func WithResetDelay(d time.Duration) Option {
	return func(o *options) {
		o.resetDelay = d
	}
}

// WithHookOptions passes options to the underlying flag, e.g. a clock.
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

// New returns a Copier writing to w. A nil w behaves like a host without a
// clipboard.
func New(w Writer, opts ...Option) *Copier {
	o := options{resetDelay: DefaultResetDelay}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := log.With().Str("component", "clipboard").Logger()
		o.logger = &l
	}

	return &Copier{
		w:      w,
		copied: hooks.NewFlag(o.resetDelay, o.hookOpts...),
		log:    o.logger,
	}
}

// Copy writes text to the clipboard. On success Copied becomes true until the
// reset delay elapses. It returns ErrUnsupported when there is no clipboard,
// and the write error otherwise; in both cases Copied is cleared.
func (c *Copier) Copy(text string) error {
	if c.w == nil {
		c.log.Warn().Msg("clipboard not supported")
		c.copied.Clear()
		return ErrUnsupported
	}

	if err := c.w.WriteAll(text); err != nil {
		c.copied.Clear()
		if errors.Is(err, ErrUnsupported) {
			c.log.Warn().Msg("clipboard not supported")
			return err
		}
		c.log.Err(err).Msg("failed to copy text")
		return fmt.Errorf("copy to clipboard: %w", err)
	}

	c.copied.Set()
	return nil
}

// Copied reports whether a copy succeeded within the reset delay.
func (c *Copier) Copied() bool {
	return c.copied.Value()
}

// Close cancels the pending reset. It is safe to call multiple times.
func (c *Copier) Close() {
	c.copied.Dispose()
}
