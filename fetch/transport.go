package fetch

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// LoggingTransport logs each request and response at debug level.
type LoggingTransport struct {
	Transport http.RoundTripper
	Log       *zerolog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	l := t.Log
	if l == nil {
		l = &log.Logger
	}

	l.Debug().
		Str("req.method", req.Method).
		Str("req.url", req.URL.String()).
		Msg("http req")

	res, err := t.Transport.RoundTrip(req)
	if err != nil {
		l.Debug().Err(err).
			Str("req.method", req.Method).
			Str("req.url", req.URL.String()).
			Msg("http req failed")
		return nil, err
	}

	l.Debug().
		Str("req.method", req.Method).
		Str("req.url", req.URL.String()).
		Int("res.status", res.StatusCode).
		Msg("http resp")

	return res, nil
}

// DefaultClient returns the client used when none is given to New: the
// default transport wrapped with request logging and OpenTelemetry
// instrumentation.
func DefaultClient(logger *zerolog.Logger) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(&LoggingTransport{
			Transport: http.DefaultTransport,
			Log:       logger,
		}),
	}
}
