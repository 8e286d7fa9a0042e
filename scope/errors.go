package scope

import (
	"errors"
	"fmt"
)

var (
	// ErrDoubleJoin is returned when a handle is joined more than once.
	ErrDoubleJoin = errors.New("scope: handle already joined")
	// ErrForeignHandle is returned when a handle is joined through a scope
	// that did not spawn it.
	ErrForeignHandle = errors.New("scope: handle belongs to another scope")
	// ErrWorkerFailed is matched by every WorkerFailedError.
	ErrWorkerFailed = errors.New("scope: worker failed")
	// ErrWorkerExited is the cause recorded for a worker that called
	// runtime.Goexit.
	ErrWorkerExited = errors.New("scope: worker exited without returning")
)

// JoinError reports a misuse of Join for a specific handle.
type JoinError struct {
	ID  int
	Err error
}

func (e *JoinError) Error() string { return fmt.Sprintf("task %d: %v", e.ID, e.Err) }

func (e *JoinError) Unwrap() error { return e.Err }

// WorkerFailedError describes a worker that terminated abnormally: it
// returned an error, panicked, or exited via runtime.Goexit.
type WorkerFailedError struct {
	// ID is the spawn index of the worker.
	ID int
	// Cause is the error returned by the worker, ErrWorkerExited, or nil for
	// a panic.
	Cause error
	// Panicked is set when the worker panicked; Value and Stack describe it.
	Panicked bool
	Value    any
	Stack    []byte
}

func (e *WorkerFailedError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("task %d: panic: %v", e.ID, e.Value)
	}
	return fmt.Sprintf("task %d: %v", e.ID, e.Cause)
}

func (e *WorkerFailedError) Unwrap() error { return e.Cause }

func (e *WorkerFailedError) Is(target error) bool { return target == ErrWorkerFailed }
