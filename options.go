package hooks

import (
	"github.com/rs/zerolog"
)

// Option is a function that can be used to configure a throttle, debouncer or
// flag.
type Option func(*Config)

// WithClock returns an option that replaces the wall clock used to timestamp
// reports and schedule trailing emissions.
//
// Tests use this to drive the primitives with a manual clock instead of
// sleeping.
func WithClock(c Clock) Option {
	return func(conf *Config) {
		conf.Clock = c
	}
}

// WithLogger returns an option that sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(conf *Config) {
		conf.Logger = &l
	}
}

// WithObserver returns an option that reports throttle activity to o, for
// example to record metrics.
func WithObserver(o Observer) Option {
	return func(conf *Config) {
		conf.Observer = o
	}
}
