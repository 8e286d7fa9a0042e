package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrPoisoned is matched by every PoisonError.
	ErrPoisoned = errors.New("shared: container poisoned")
	// ErrReleased is returned when a handle is used after Release.
	ErrReleased = errors.New("shared: handle released")
	// ErrShared is matched by every SharedError.
	ErrShared = errors.New("shared: container has other live handles")
)

// PoisonError reports that a previous critical section on the container
// terminated abnormally while holding the lock.
type PoisonError struct {
	// Name is the container name given by WithName, if any.
	Name string
}

func (e *PoisonError) Error() string {
	if e.Name == "" {
		return ErrPoisoned.Error()
	}
	return fmt.Sprintf("shared: container %q poisoned", e.Name)
}

func (e *PoisonError) Unwrap() error { return ErrPoisoned }

// SharedError reports an unsynchronized read attempted while other handles
// to the container are still alive.
type SharedError struct {
	Name string
	// Refs is the number of live handles observed at the time of the read.
	Refs int64
}

func (e *SharedError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s (refs=%d)", ErrShared, e.Refs)
	}
	return fmt.Sprintf("shared: container %q has other live handles (refs=%d)", e.Name, e.Refs)
}

func (e *SharedError) Unwrap() error { return ErrShared }
