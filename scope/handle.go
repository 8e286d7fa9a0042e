package scope

import (
	"sync/atomic"
	"time"
)

// Status is the lifecycle state of a worker as seen through its Handle.
type Status int32

const (
	Spawned Status = iota
	Running
	Completed
	Failed
	// Consumed marks a handle whose outcome has been taken by Join.
	Consumed
)

func (s Status) String() string {
	switch s {
	case Spawned:
		return "spawned"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Consumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the worker has finished.
func (s Status) Terminal() bool { return s == Completed || s == Failed || s == Consumed }

// Outcome is the result of one worker. Status is Completed or Failed; Err is
// a *WorkerFailedError when Failed.
type Outcome struct {
	Status   Status
	Err      error
	Duration time.Duration
}

func (o Outcome) OK() bool { return o.Status == Completed }

// Handle is the completion token of one spawned worker. It may be joined once.
type Handle struct {
	id     int
	scope  *Scope
	done   chan struct{}
	status atomic.Int32
	joined atomic.Bool

	// written before done is closed
	outcome Outcome
}

// ID is the spawn index of the worker within its scope.
func (h *Handle) ID() int { return h.id }

func (h *Handle) Status() Status { return Status(h.status.Load()) }

// Done is closed once the worker has terminated.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Join is shorthand for h's scope Join(h).
func (h *Handle) Join() (Outcome, error) { return h.scope.Join(h) }
