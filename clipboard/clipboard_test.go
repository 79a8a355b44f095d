package clipboard_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysticwillz/hooks"
	"github.com/mysticwillz/hooks/clipboard"
	"github.com/mysticwillz/hooks/internal/fakeclock"
)

type memWriter struct {
	text string
	err  error
}

func (w *memWriter) WriteAll(text string) error {
	if w.err != nil {
		return w.err
	}
	w.text = text
	return nil
}

func newCopier(w clipboard.Writer, clock *fakeclock.Clock) *clipboard.Copier {
	return clipboard.New(w,
		clipboard.WithHookOptions(hooks.WithClock(clock)),
		clipboard.WithLogger(zerolog.Nop()),
	)
}

func TestCopier_Copy(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	w := &memWriter{}
	c := newCopier(w, clock)
	defer c.Close()

	require.NoError(t, c.Copy("hello"))
	assert.Equal(t, "hello", w.text)
	assert.True(t, c.Copied())

	clock.Advance(clipboard.DefaultResetDelay - time.Millisecond)
	assert.True(t, c.Copied())

	clock.Advance(time.Millisecond)
	assert.False(t, c.Copied())
}

func TestCopier_repeatedCopyExtendsFlag(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	c := newCopier(&memWriter{}, clock)
	defer c.Close()

	require.NoError(t, c.Copy("a"))
	clock.Advance(1500 * time.Millisecond)
	require.NoError(t, c.Copy("b"))

	clock.Advance(time.Second)
	assert.True(t, c.Copied())
	assert.LessOrEqual(t, clock.Pending(), 1)
}

func TestCopier_errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name    string
		writer  clipboard.Writer
		wantErr error
	}{
		{
			name:    "nil writer",
			writer:  nil,
			wantErr: clipboard.ErrUnsupported,
		},
		{
			name: "unsupported writer",
			writer: clipboard.WriterFunc(func(string) error {
				return clipboard.ErrUnsupported
			}),
			wantErr: clipboard.ErrUnsupported,
		},
		{
			name:    "write failure",
			writer:  &memWriter{err: boom},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := fakeclock.New()
			c := newCopier(tt.writer, clock)
			defer c.Close()

			err := c.Copy("x")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, c.Copied())
			assert.Zero(t, clock.Pending())
		})
	}
}

func TestCopier_failureClearsFlag(t *testing.T) {
	t.Parallel()

	clock := fakeclock.New()
	w := &memWriter{}
	c := newCopier(w, clock)
	defer c.Close()

	require.NoError(t, c.Copy("a"))
	w.err = errors.New("denied")
	require.Error(t, c.Copy("b"))
	assert.False(t, c.Copied())
}
