package hooks

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is a reusable set of options. The zero value is valid and resolves to
// the real clock, the global zerolog logger and no observer.
type Config struct {
	Clock    Clock
	Logger   *zerolog.Logger
	Observer Observer
}

// Set applies the given options to the config.
func (c *Config) Set(o ...Option) {
	for _, opt := range o {
		opt(c)
	}
}

// resolve returns a copy of the config with the given options applied and any
// unset fields defaulted.
func (c *Config) resolve(component string, o ...Option) Config {
	var conf Config
	if c != nil {
		// Copy so that the preset can be modified without affecting
		// existing primitives.
		conf = *c
	}
	conf.Set(o...)

	if conf.Clock == nil {
		conf.Clock = RealClock()
	}
	if conf.Observer == nil {
		conf.Observer = nopObserver{}
	}
	if conf.Logger == nil {
		l := log.With().Str("component", component).Logger()
		conf.Logger = &l
	}

	return conf
}

// NewDebounce is like Debounce, using the config as base options.
func (c *Config) NewDebounce(
	wait time.Duration,
	f func(),
	opts ...Option,
) (debounced func(), cancel func()) {
	return newDebounce(c.resolve("debounce", opts...), wait, f)
}

// NewFlag is like the package-level NewFlag, using the config as base
// options.
func (c *Config) NewFlag(resetAfter time.Duration, opts ...Option) *Flag {
	return newFlag(c.resolve("flag", opts...), resetAfter)
}

// ConfigThrottle is like NewThrottle, using c as base options.
func ConfigThrottle[T any](
	c *Config,
	initial T,
	delay time.Duration,
	opts ...Option,
) *Throttle[T] {
	return newThrottle(c.resolve("throttle", opts...), initial, delay)
}
