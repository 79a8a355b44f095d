// Package fetch loads JSON documents over HTTP and keeps the latest result,
// cancelling the in-flight request whenever the URL changes or the fetcher is
// closed.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrBadStatus is matched by errors.Is for any non-2xx response.
	ErrBadStatus = errors.New("network response was not ok")
	// ErrClosed is returned by Load once the fetcher is closed.
	ErrClosed = errors.New("fetcher closed")
)

// StatusError is the error for a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBadStatus, e.Status)
}

// Is reports whether target is ErrBadStatus.
func (e *StatusError) Is(target error) bool {
	return target == ErrBadStatus
}

// State is a snapshot of a fetcher. Data keeps the last successful result
// while a new request is loading.
type State[T any] struct {
	Data    *T
	Loading bool
	Err     error
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	timeout time.Duration
	header  http.Header
	logger  *zerolog.Logger
}

// WithTimeout bounds each request. A timeout is reported as an error. A
// non-positive d disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(o *options) {
		o.header.Add(key, value)
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// Fetcher loads a URL and decodes the JSON response into a T. At most one
// request is in flight: loading a different URL aborts the previous request,
// whose result is then discarded rather than reported as an error.
type Fetcher[T any] struct {
	client  *http.Client
	timeout time.Duration
	header  http.Header
	log     *zerolog.Logger

	mux     sync.Mutex
	state   State[T]
	url     string
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	wg      sync.WaitGroup
	subs    []subscriber[T]
	nextSub uint64
}

type subscriber[T any] struct {
	id uint64
	fn func(State[T])
}

// New returns a Fetcher using client. If client is nil, DefaultClient is used.
func New[T any](client *http.Client, opts ...Option) *Fetcher[T] {
	o := options{timeout: DefaultTimeout, header: http.Header{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		l := log.With().Str("component", "fetch").Logger()
		o.logger = &l
	}
	if client == nil {
		client = DefaultClient(o.logger)
	}

	return &Fetcher[T]{
		client:  client,
		timeout: o.timeout,
		header:  o.header,
		log:     o.logger,
	}
}

// Load starts fetching url in the background. If a request for a different
// URL is in flight it is aborted first; if one for the same URL is in flight,
// Load does nothing. Cancelling ctx aborts the request.
func (f *Fetcher[T]) Load(ctx context.Context, url string) error {
	f.mux.Lock()

	if f.closed {
		f.mux.Unlock()
		return ErrClosed
	}
	if f.cancel != nil {
		if f.url == url {
			f.mux.Unlock()
			return nil
		}
		f.log.Debug().Str("url", f.url).Msg("aborting superseded request")
		f.cancel()
	}

	f.gen++
	gen := f.gen
	var cancel context.CancelFunc
	if f.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	done := make(chan struct{})

	f.url = url
	f.cancel = cancel
	f.done = done
	f.state.Loading = true
	f.state.Err = nil
	state, subs := f.snapshot()
	f.wg.Add(1)
	f.mux.Unlock()

	notify(subs, state)

	go f.run(ctx, cancel, gen, url, done)

	return nil
}

// State returns the current state.
func (f *Fetcher[T]) State() State[T] {
	f.mux.Lock()
	defer f.mux.Unlock()

	return f.state
}

// Subscribe registers fn to be called with each new state. The returned
// function removes the subscription and may be called multiple times.
func (f *Fetcher[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	f.mux.Lock()
	defer f.mux.Unlock()

	f.nextSub++
	id := f.nextSub
	f.subs = append(f.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		f.mux.Lock()
		defer f.mux.Unlock()

		for i, s := range f.subs {
			if s.id == id {
				f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
				return
			}
		}
	}
}

// Wait blocks until the current request, if any, has settled.
func (f *Fetcher[T]) Wait() {
	f.mux.Lock()
	done := f.done
	f.mux.Unlock()

	if done != nil {
		<-done
	}
}

// Close aborts the in-flight request and waits for every request goroutine
// to exit. Subscribers are not notified of anything afterwards. Close is
// idempotent.
func (f *Fetcher[T]) Close() {
	f.mux.Lock()
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state.Loading = false
	f.subs = nil
	f.mux.Unlock()

	f.wg.Wait()
}

func (f *Fetcher[T]) run(
	ctx context.Context,
	cancel context.CancelFunc,
	gen uint64,
	url string,
	done chan struct{},
) {
	defer f.wg.Done()
	defer close(done)
	defer cancel()

	data, err := f.do(ctx, url)

	f.mux.Lock()
	if f.closed || gen != f.gen {
		f.mux.Unlock()
		f.log.Debug().Str("url", url).Msg("discarding aborted request")
		return
	}

	f.cancel = nil
	f.state.Loading = false
	switch {
	case err == nil:
		f.state.Data = &data
	case errors.Is(err, context.Canceled):
		f.log.Debug().Str("url", url).Msg("request aborted")
	default:
		f.log.Err(err).Str("url", url).Msg("request failed")
		f.state.Err = err
	}
	state, subs := f.snapshot()
	f.mux.Unlock()

	notify(subs, state)
}

func (f *Fetcher[T]) do(ctx context.Context, url string) (T, error) {
	var v T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return v, err
	}
	for k, vals := range f.header {
		for _, val := range vals {
			req.Header.Add(k, val)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return v, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}

	return v, nil
}

// snapshot should only be called while the mutex is locked.
func (f *Fetcher[T]) snapshot() (State[T], []subscriber[T]) {
	if len(f.subs) == 0 {
		return f.state, nil
	}

	return f.state, append([]subscriber[T](nil), f.subs...)
}

func notify[T any](subs []subscriber[T], s State[T]) {
	for _, sub := range subs {
		sub.fn(s)
	}
}
