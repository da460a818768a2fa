// Package telemetry holds the OpenTelemetry instruments recorded by the game
// server. Instruments come from the global meter provider, which is a no-op
// unless the embedding process installs an SDK.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/mcoot/geoshooter"

// Metrics groups the server's counters
type Metrics struct {
	connections    metric.Int64UpDownCounter
	messages       metric.Int64Counter
	protocolErrors metric.Int64Counter
	shots          metric.Int64Counter
	hits           metric.Int64Counter
	eliminations   metric.Int64Counter
	droppedFrames  metric.Int64Counter
	panics         metric.Int64Counter
}

// New creates the instruments on the global meter
func New() (*Metrics, error) {
	return NewWithMeter(otel.Meter(meterName))
}

// NewNoop returns instruments that record nothing
func NewNoop() *Metrics {
	m, err := NewWithMeter(noop.NewMeterProvider().Meter(meterName))
	if err != nil {
		// The noop meter never fails to create instruments
		panic(err)
	}
	return m
}

// NewWithMeter creates the instruments on the given meter
func NewWithMeter(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.connections, err = meter.Int64UpDownCounter(
		"geoshooter.connections.open",
		metric.WithDescription("Currently open client connections"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating connections counter: %w", err)
	}

	m.messages, err = meter.Int64Counter(
		"geoshooter.messages.received",
		metric.WithDescription("Client messages decoded, by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages counter: %w", err)
	}

	m.protocolErrors, err = meter.Int64Counter(
		"geoshooter.messages.rejected",
		metric.WithDescription("Client messages dropped as protocol errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating protocol error counter: %w", err)
	}

	m.shots, err = meter.Int64Counter(
		"geoshooter.shots",
		metric.WithDescription("Shots resolved"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating shots counter: %w", err)
	}

	m.hits, err = meter.Int64Counter(
		"geoshooter.hits",
		metric.WithDescription("Shots that connected with a target"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hits counter: %w", err)
	}

	m.eliminations, err = meter.Int64Counter(
		"geoshooter.eliminations",
		metric.WithDescription("Players eliminated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating eliminations counter: %w", err)
	}

	m.droppedFrames, err = meter.Int64Counter(
		"geoshooter.frames.dropped",
		metric.WithDescription("Outbound state frames dropped or coalesced under backpressure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped frames counter: %w", err)
	}

	m.panics, err = meter.Int64Counter(
		"geoshooter.http.panics",
		metric.WithDescription("Panics recovered while serving HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating panics counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) ConnectionOpened(ctx context.Context) {
	m.connections.Add(ctx, 1)
}

func (m *Metrics) ConnectionClosed(ctx context.Context) {
	m.connections.Add(ctx, -1)
}

// MessageReceived counts a decoded client message
func (m *Metrics) MessageReceived(ctx context.Context, msgType string) {
	m.messages.Add(ctx, 1, metric.WithAttributes(attribute.String("type", msgType)))
}

// MessageRejected counts a dropped client message, labelled by reason
func (m *Metrics) MessageRejected(ctx context.Context, reason string) {
	m.protocolErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// ShotResolved counts one shot along with its hits and eliminations
func (m *Metrics) ShotResolved(ctx context.Context, hits, eliminations int) {
	m.shots.Add(ctx, 1)
	if hits > 0 {
		m.hits.Add(ctx, int64(hits))
	}
	if eliminations > 0 {
		m.eliminations.Add(ctx, int64(eliminations))
	}
}

func (m *Metrics) FramesDropped(ctx context.Context, n int) {
	if n > 0 {
		m.droppedFrames.Add(ctx, int64(n))
	}
}

// PanicRecovered counts a handler panic caught by the recovery middleware
func (m *Metrics) PanicRecovered(ctx context.Context) {
	m.panics.Add(ctx, 1)
}
