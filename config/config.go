// Package config loads the tunable delays and thresholds of the hooks from a
// YAML document.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mysticwillz/hooks"
	"github.com/mysticwillz/hooks/clipboard"
	"github.com/mysticwillz/hooks/fetch"
	"github.com/mysticwillz/hooks/infinitescroll"
)

// Settings holds the tunables of every hook. Durations are written as Go
// duration strings, e.g. "500ms".
type Settings struct {
	Throttle struct {
		Delay time.Duration `yaml:"delay"`
	} `yaml:"throttle"`
	Clipboard struct {
		ResetDelay time.Duration `yaml:"resetDelay"`
	} `yaml:"clipboard"`
	Fetch struct {
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"fetch"`
	InfiniteScroll struct {
		Threshold   float64       `yaml:"threshold"`
		SettleDelay time.Duration `yaml:"settleDelay"`
	} `yaml:"infiniteScroll"`
}

// DefaultThrottleDelay is the throttle delay used when none is configured.
const DefaultThrottleDelay = 500 * time.Millisecond

// Default returns the default settings.
func Default() Settings {
	var s Settings
	s.Throttle.Delay = DefaultThrottleDelay
	s.Clipboard.ResetDelay = clipboard.DefaultResetDelay
	s.Fetch.Timeout = fetch.DefaultTimeout
	s.InfiniteScroll.Threshold = infinitescroll.DefaultThreshold
	s.InfiniteScroll.SettleDelay = infinitescroll.DefaultSettleDelay

	return s
}

// Parse decodes settings from r. Keys that are absent keep their default.
func Parse(r io.Reader) (Settings, error) {
	s := Default()

	if err := yaml.NewDecoder(r).Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// LoadFile reads settings from the YAML file at path.
func LoadFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	return Parse(bytes.NewReader(b))
}

// Validate rejects negative durations and thresholds.
func (s Settings) Validate() error {
	for name, d := range map[string]time.Duration{
		"throttle.delay":             s.Throttle.Delay,
		"clipboard.resetDelay":       s.Clipboard.ResetDelay,
		"fetch.timeout":              s.Fetch.Timeout,
		"infiniteScroll.settleDelay": s.InfiniteScroll.SettleDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	if s.InfiniteScroll.Threshold < 0 {
		return fmt.Errorf(
			"infiniteScroll.threshold must not be negative, got %v",
			s.InfiniteScroll.Threshold,
		)
	}

	return nil
}

// NewThrottle returns a throttle using the configured delay.
func NewThrottle[T any](s Settings, initial T, opts ...hooks.Option) *hooks.Throttle[T] {
	return hooks.NewThrottle(initial, s.Throttle.Delay, opts...)
}

// ClipboardOptions returns the clipboard options matching s.
func (s Settings) ClipboardOptions() []clipboard.Option {
	return []clipboard.Option{
		clipboard.WithResetDelay(s.Clipboard.ResetDelay),
	}
}

// FetchOptions returns the fetch options matching s.
func (s Settings) FetchOptions() []fetch.Option {
	return []fetch.Option{
		fetch.WithTimeout(s.Fetch.Timeout),
	}
}

// InfiniteScrollOptions returns the infinite scroll options matching s.
func (s Settings) InfiniteScrollOptions() []infinitescroll.Option {
	return []infinitescroll.Option{
		infinitescroll.WithThreshold(s.InfiniteScroll.Threshold),
		infinitescroll.WithSettleDelay(s.InfiniteScroll.SettleDelay),
	}
}
