// Package telemetry records best-effort product analytics events.
//
// Emission is deliberately fire-and-forget: a failing or absent sink must
// never fail or delay the operation that produced the event.
package telemetry

import (
	"context"
	"log"
	"time"
)

// Event is one anonymous analytics event.
type Event struct {
	Name      string
	Attrs     map[string]string
	Timestamp time.Time
}

// Sink receives emitted events.
type Sink interface {
	RecordEvent(ctx context.Context, evt Event) error
}

// Emitter records analytics events to a sink.
type Emitter struct {
	sink  Sink
	clock func() time.Time
}

// NewEmitter creates an emitter over the given sink. A nil sink yields a
// no-op emitter.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink, clock: time.Now}
}

// Emit records an event. Sink failures are logged and swallowed.
func (e *Emitter) Emit(ctx context.Context, evt Event) {
	if e == nil || e.sink == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		clock := e.clock
		if clock == nil {
			clock = time.Now
		}
		evt.Timestamp = clock().UTC()
	}
	if err := e.sink.RecordEvent(ctx, evt); err != nil {
		log.Printf("telemetry: record %s: %v", evt.Name, err)
	}
}

// LogSink writes events to the process log. It is the default sink when no
// durable analytics backend is configured.
type LogSink struct{}

// RecordEvent implements Sink.
func (LogSink) RecordEvent(_ context.Context, evt Event) error {
	log.Printf("event %s attrs=%v", evt.Name, evt.Attrs)
	return nil
}
