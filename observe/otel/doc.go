// Package otel provides an OpenTelemetry observer plugin for the scope library.
// It emits span events (spawn, start, finish, error, panic, join) on the span
// carried by the scope's context, with low overhead when that span is not
// recording.
package otel
