package hooks_test

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysticwillz/hooks"
	"github.com/mysticwillz/hooks/internal/fakeclock"
)

type throttleOp struct {
	at      time.Duration
	report  string
	dispose bool
	// want is checked after the op when non-empty.
	want string
}

type throttleCase struct {
	name        string
	delay       time.Duration
	ops         []throttleOp
	wantEmitted []string
	wantValue   string
}

// runThrottleCases runs each case on a clock starting at start, reporting
// every value at start plus the op's offset.
func runThrottleCases(t *testing.T, start time.Time, tests []throttleCase) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := fakeclock.NewAt(start)
			th := hooks.NewThrottle("", tt.delay, hooks.WithClock(clock))
			defer th.Dispose()

			var emitted []string
			th.Subscribe(func(v string) {
				emitted = append(emitted, v)
			})

			for _, op := range tt.ops {
				now := start.Add(op.at)
				clock.Set(now)

				switch {
				case op.dispose:
					th.Dispose()
				case op.report != "":
					th.ReportAt(op.report, now)
				}

				assert.LessOrEqual(t, clock.Pending(), 1, "at %s", op.at)
				if op.want != "" {
					assert.Equal(t, op.want, th.Value(), "at %s", op.at)
				}
			}

			// Drain anything still scheduled.
			clock.Advance(time.Hour)

			assert.Equal(t, tt.wantEmitted, emitted)
			assert.Equal(t, tt.wantValue, th.Value())
			assert.Zero(t, clock.Pending())
			if tt.delay <= 0 {
				assert.Zero(t, clock.Fired(), "no timer should ever be scheduled")
			}
		})
	}
}

// throttleWindowCases walk a 500ms window from the first report through
// dispose.
func throttleWindowCases() []throttleCase {
	return []throttleCase{
		{
			name:  "first report emits immediately",
			delay: 500 * time.Millisecond,
			ops: []throttleOp{
				{at: 0, report: "a", want: "a"},
			},
			wantEmitted: []string{"a"},
			wantValue:   "a",
		},
		{
			name:  "reports within window emit the last one at window close",
			delay: 500 * time.Millisecond,
			ops: []throttleOp{
				{at: 0, report: "a", want: "a"},
				{at: 100 * time.Millisecond, report: "b", want: "a"},
				{at: 200 * time.Millisecond, report: "c", want: "a"},
				{at: 499 * time.Millisecond, want: "a"},
				{at: 500 * time.Millisecond, want: "c"},
			},
			wantEmitted: []string{"a", "c"},
			wantValue:   "c",
		},
		{
			name:  "report after a full window emits immediately",
			delay: 500 * time.Millisecond,
			ops: []throttleOp{
				{at: 0, report: "a"},
				{at: 100 * time.Millisecond, report: "b"},
				{at: 200 * time.Millisecond, report: "c"},
				{at: 500 * time.Millisecond, want: "c"},
				{at: 1000 * time.Millisecond, report: "d", want: "d"},
			},
			wantEmitted: []string{"a", "c", "d"},
			wantValue:   "d",
		},
		{
			name:  "dispose cancels the pending emission",
			delay: 500 * time.Millisecond,
			ops: []throttleOp{
				{at: 0, report: "a"},
				{at: 100 * time.Millisecond, report: "b"},
				{at: 200 * time.Millisecond, report: "c"},
				{at: 300 * time.Millisecond, dispose: true, want: "a"},
				{at: 500 * time.Millisecond, want: "a"},
				{at: 10 * time.Second, want: "a"},
			},
			wantEmitted: []string{"a"},
			wantValue:   "a",
		},
	}
}

func TestThrottle(t *testing.T) {
	t.Parallel()

	tests := slices.Concat(throttleWindowCases(), []throttleCase{
		{
			name:  "reports after dispose are ignored",
			delay: 500 * time.Millisecond,
			ops: []throttleOp{
				{at: 0, report: "a"},
				{at: 100 * time.Millisecond, dispose: true},
				{at: 2 * time.Second, report: "b", want: "a"},
			},
			wantEmitted: []string{"a"},
			wantValue:   "a",
		},
		{
			name:  "dispose after fire changes nothing",
			delay: 500 * time.Millisecond,
			ops: []throttleOp{
				{at: 0, report: "a"},
				{at: 100 * time.Millisecond, report: "b"},
				{at: 600 * time.Millisecond, dispose: true, want: "b"},
				{at: 700 * time.Millisecond, dispose: true, want: "b"},
			},
			wantEmitted: []string{"a", "b"},
			wantValue:   "b",
		},
		{
			name:  "zero delay emits every report",
			delay: 0,
			ops: []throttleOp{
				{at: 0, report: "a", want: "a"},
				{at: 0, report: "b", want: "b"},
				{at: time.Millisecond, report: "c", want: "c"},
			},
			wantEmitted: []string{"a", "b", "c"},
			wantValue:   "c",
		},
		{
			name:  "negative delay behaves like zero",
			delay: -time.Second,
			ops: []throttleOp{
				{at: 0, report: "a", want: "a"},
				{at: 0, report: "b", want: "b"},
			},
			wantEmitted: []string{"a", "b"},
			wantValue:   "b",
		},
		{
			name:  "continuous reports emit once per window",
			delay: 200 * time.Millisecond,
			ops: []throttleOp{
				{at: 0, report: "0"},
				{at: 50 * time.Millisecond, report: "1"},
				{at: 150 * time.Millisecond, report: "2"},
				{at: 250 * time.Millisecond, report: "3", want: "2"},
				{at: 350 * time.Millisecond, report: "4", want: "2"},
				{at: 400 * time.Millisecond, want: "4"},
			},
			wantEmitted: []string{"0", "2", "4"},
			wantValue:   "4",
		},
	})

	runThrottleCases(t, fakeclock.Epoch, tests)
}

func TestThrottle_zeroTimeline(t *testing.T) {
	t.Parallel()

	// A timeline starting at the zero time must not look like "never
	// emitted" once the first value has been emitted at it.
	runThrottleCases(t, time.Time{}, throttleWindowCases())
}

func TestThrottle_singleReportTiming(t *testing.T) {
	t.Parallel()

	const delay = 500 * time.Millisecond

	for _, elapsed := range []time.Duration{
		0,
		time.Millisecond,
		250 * time.Millisecond,
		499 * time.Millisecond,
	} {
		t.Run(fmt.Sprintf("elapsed %s", elapsed), func(t *testing.T) {
			t.Parallel()

			clock := fakeclock.New()
			th := hooks.NewThrottle(0, delay, hooks.WithClock(clock))
			defer th.Dispose()

			th.Report(1)
			clock.Advance(elapsed)
			th.Report(2)

			wait := delay - elapsed
			if wait > 0 {
				clock.Advance(wait - time.Nanosecond)
				assert.Equal(t, 1, th.Value())
				assert.True(t, th.Pending())
				clock.Advance(time.Nanosecond)
			}
			assert.Equal(t, 2, th.Value())
			assert.False(t, th.Pending())
		})
	}
}

func TestThrottle_ReportAt(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	th := hooks.NewThrottle("", 500*time.Millisecond, hooks.WithClock(clock))
	defer th.Dispose()

	th.ReportAt("a", fakeclock.At(0))
	th.ReportAt("b", fakeclock.At(400*time.Millisecond))
	assert.Equal(t, "a", th.Value())

	// The timer is armed for the remaining 100ms from the clock's point of
	// view, not from the reported timestamp.
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, "b", th.Value())
}

func TestThrottle_atMostOneTimer(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	th := hooks.NewThrottle(0, time.Second, hooks.WithClock(clock))
	defer th.Dispose()

	for i := 0; i < 100; i++ {
		th.Report(i)
		require.LessOrEqual(t, clock.Pending(), 1)
		clock.Advance(37 * time.Millisecond)
	}

	clock.Advance(time.Second)
	assert.Equal(t, 99, th.Value())
	assert.Zero(t, clock.Pending())
}

func TestThrottle_reentrantReport(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	th := hooks.NewThrottle("", 500*time.Millisecond, hooks.WithClock(clock))
	defer th.Dispose()

	var got []string
	th.Subscribe(func(v string) {
		got = append(got, v)
		if v == "c" {
			th.Report("e")
		}
	})

	th.Report("a")
	clock.Advance(100 * time.Millisecond)
	th.Report("c")

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, "c", th.Value())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, "e", th.Value())
	assert.Equal(t, []string{"a", "c", "e"}, got)
	assert.Zero(t, clock.Pending())
}

func TestThrottle_Subscribe(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	th := hooks.NewThrottle(0, 0, hooks.WithClock(clock))
	defer th.Dispose()

	var a, b []int
	unsubA := th.Subscribe(func(v int) { a = append(a, v) })
	th.Subscribe(func(v int) { b = append(b, v) })

	th.Report(1)
	unsubA()
	unsubA()
	th.Report(2)

	assert.Equal(t, []int{1}, a)
	assert.Equal(t, []int{1, 2}, b)
}

type countingObserver struct {
	mux        sync.Mutex
	immediate  int
	trailing   int
	superseded int
	disposed   []bool
}

func (o *countingObserver) Emitted(trailing bool) {
	o.mux.Lock()
	defer o.mux.Unlock()

	if trailing {
		o.trailing++
	} else {
		o.immediate++
	}
}

func (o *countingObserver) Superseded() {
	o.mux.Lock()
	defer o.mux.Unlock()

	o.superseded++
}

func (o *countingObserver) Disposed(pending bool) {
	o.mux.Lock()
	defer o.mux.Unlock()

	o.disposed = append(o.disposed, pending)
}

func TestThrottle_observer(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	obs := &countingObserver{}
	th := hooks.NewThrottle(
		"", 500*time.Millisecond,
		hooks.WithClock(clock), hooks.WithObserver(obs),
	)

	// a is immediate, c supersedes b and is emitted at 500ms.
	th.Report("a")
	clock.Advance(100 * time.Millisecond)
	th.Report("b")
	clock.Advance(100 * time.Millisecond)
	th.Report("c")
	clock.Advance(300 * time.Millisecond)
	th.Report("d")
	th.Dispose()
	th.Dispose()

	assert.Equal(t, 1, obs.immediate)
	assert.Equal(t, 1, obs.trailing)
	assert.Equal(t, 1, obs.superseded)
	assert.Equal(t, []bool{true}, obs.disposed)
}

func TestThrottle_concurrentReports(t *testing.T) {
	t.Parallel()

	th := hooks.NewThrottle(-1, 10*time.Millisecond)
	defer th.Dispose()

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				th.Report(i*100 + j)
			}
		}(i)
	}
	wg.Wait()

	th.Report(1000)
	assert.Eventually(t, func() bool {
		return th.Value() == 1000 && !th.Pending()
	}, time.Second, 5*time.Millisecond)
}
