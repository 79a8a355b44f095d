// Package metrics records throttle activity with OpenTelemetry.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mysticwillz/hooks"
)

const meterName = "github.com/mysticwillz/hooks"

// Observer is a hooks.Observer counting emissions, superseded reports and
// disposals.
type Observer struct {
	// Emissions is the number of values that became current.
	Emissions metric.Int64Counter
	// Supersessions is the number of pending values replaced by a later
	// report.
	Supersessions metric.Int64Counter
	// Disposals is the number of disposed throttles.
	Disposals metric.Int64Counter

	attrs []attribute.KeyValue
}

var _ hooks.Observer = (*Observer)(nil)

// NewObserver creates the instruments from provider. attrs are added to every
// measurement, e.g. to tell throttles apart.
func NewObserver(provider metric.MeterProvider, attrs ...attribute.KeyValue) (*Observer, error) {
	meter := provider.Meter(meterName)

	var err error
	o := &Observer{attrs: attrs}

	o.Emissions, err = meter.Int64Counter(
		"hooks.throttle.emissions",
		metric.WithDescription("Number of values emitted by throttles"),
	)
	if err != nil {
		return nil, err
	}
	o.Supersessions, err = meter.Int64Counter(
		"hooks.throttle.superseded",
		metric.WithDescription("Number of pending values replaced before emission"),
	)
	if err != nil {
		return nil, err
	}
	o.Disposals, err = meter.Int64Counter(
		"hooks.throttle.disposals",
		metric.WithDescription("Number of disposed throttles"),
	)
	if err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Observer) with(kv ...attribute.KeyValue) metric.AddOption {
	all := make([]attribute.KeyValue, 0, len(o.attrs)+len(kv))
	all = append(all, o.attrs...)
	all = append(all, kv...)

	return metric.WithAttributes(all...)
}

// Emitted implements hooks.Observer.
func (o *Observer) Emitted(trailing bool) {
	edge := "immediate"
	if trailing {
		edge = "trailing"
	}
	o.Emissions.Add(context.Background(), 1, o.with(attribute.String("edge", edge)))
}

// Superseded implements hooks.Observer.
func (o *Observer) Superseded() {
	o.Supersessions.Add(context.Background(), 1, o.with())
}

// Disposed implements hooks.Observer.
func (o *Observer) Disposed(pending bool) {
	o.Disposals.Add(context.Background(), 1, o.with(attribute.Bool("pending", pending)))
}
