package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Event names emitted by Observer.
const (
	EventScopeCreate = "scope.create"
	EventScopeJoin   = "scope.join"
	EventTaskSpawn   = "task.spawn"
	EventTaskStart   = "task.start"
	EventTaskFinish  = "task.finish"
	EventTaskError   = "task.error"
	EventTaskPanic   = "task.panic"
	EventTaskJoin    = "task.join"
)

var (
	keyTaskID   = attribute.Key("task.id")
	keyDuration = attribute.Key("task.duration_ns")
	keyWait     = attribute.Key("wait_ns")
)

// Observer implements scope.Observer by adding events to the span found in
// the scope's context. Pass a context carrying a span to scope.New.
type Observer struct{}

// New returns an observer.
func New() *Observer { return &Observer{} }

func (*Observer) ScopeCreated(ctx context.Context) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(EventScopeCreate)
}

func (*Observer) ScopeJoined(ctx context.Context, wait time.Duration) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(EventScopeJoin, trace.WithAttributes(keyWait.Int64(wait.Nanoseconds())))
}

func (*Observer) TaskSpawned(ctx context.Context, id int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(EventTaskSpawn, trace.WithAttributes(keyTaskID.Int(id)))
}

func (*Observer) TaskStarted(ctx context.Context, id int) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(EventTaskStart, trace.WithAttributes(keyTaskID.Int(id)))
}

// TaskFinished emits task.finish, or task.error / task.panic together with
// the recorded failure.
func (*Observer) TaskFinished(ctx context.Context, id int, dur time.Duration, err error, panicked bool) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := trace.WithAttributes(keyTaskID.Int(id), keyDuration.Int64(dur.Nanoseconds()))
	switch {
	case panicked:
		span.AddEvent(EventTaskPanic, attrs)
		span.RecordError(err, attrs)
	case err != nil:
		span.AddEvent(EventTaskError, attrs)
		span.RecordError(err, attrs)
	default:
		span.AddEvent(EventTaskFinish, attrs)
	}
}

func (*Observer) TaskJoined(ctx context.Context, id int, wait time.Duration) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(EventTaskJoin, trace.WithAttributes(keyTaskID.Int(id), keyWait.Int64(wait.Nanoseconds())))
}
