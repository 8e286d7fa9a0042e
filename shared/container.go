package shared

import (
	"sync"
	"sync/atomic"
	"time"
)

type Option func(*Options)

type Options struct {
	Name     string
	Observer Observer
}

// WithName labels the container for observers and error messages.
func WithName(name string) Option { return func(o *Options) { o.Name = name } }

func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// Observer receives lock and handle lifecycle events. Hooks run on the
// goroutine performing the operation; LockAcquired runs inside the critical
// section.
type Observer interface {
	LockAcquired(name string, wait time.Duration)
	LockReleased(name string, held time.Duration, poisoned bool)
	// HandleAcquired runs for the handle returned by New and for every Clone.
	HandleAcquired(name string, refs int64)
	HandleReleased(name string, refs int64)
}

// cell is the storage shared by every handle of one container.
type cell[T any] struct {
	mu       sync.Mutex
	val      T
	poisoned atomic.Bool // written only while mu is held
	refs     atomic.Int64

	name string
	obs  Observer
}

// Container is one ownership handle to a shared value. Handles are created
// by New and Clone and given up with Release; the value is dropped when the
// last handle is released. Give every goroutine that holds the value its own
// Clone so the reference count tracks the real owners.
type Container[T any] struct {
	c        *cell[T]
	released atomic.Bool
}

// New allocates a container holding initial and returns its first handle.
func New[T any](initial T, optFns ...Option) *Container[T] {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	c := &cell[T]{val: initial, name: opts.Name, obs: opts.Observer}
	c.refs.Store(1)
	if c.obs != nil {
		c.obs.HandleAcquired(c.name, 1)
	}
	return &Container[T]{c: c}
}

// Clone returns a new handle to the same value. It panics with ErrReleased
// when called on a released handle.
func (c *Container[T]) Clone() *Container[T] {
	if c.released.Load() {
		panic(ErrReleased)
	}
	n := c.c.refs.Add(1)
	if c.c.obs != nil {
		c.c.obs.HandleAcquired(c.c.name, n)
	}
	return &Container[T]{c: c.c}
}

// Release gives up this handle. It reports whether this call dropped the
// last reference, in which case the stored value is reset to its zero value.
// Releasing a handle more than once is a no-op.
func (c *Container[T]) Release() bool {
	if !c.released.CompareAndSwap(false, true) {
		return false
	}
	cl := c.c
	n := cl.refs.Add(-1)
	if cl.obs != nil {
		cl.obs.HandleReleased(cl.name, n)
	}
	if n != 0 {
		return false
	}
	cl.mu.Lock()
	var zero T
	cl.val = zero
	cl.mu.Unlock()
	return true
}

// With runs fn with exclusive access to the value. It blocks while another
// holder is inside a critical section on the same container.
//
// If fn panics or calls runtime.Goexit the container is poisoned, the lock is
// released and the panic keeps unwinding. Acquiring a poisoned container
// returns a *PoisonError without calling fn.
func (c *Container[T]) With(fn func(v *T)) error {
	if c.released.Load() {
		return ErrReleased
	}
	cl := c.c
	var start time.Time
	if cl.obs != nil {
		start = time.Now()
	}
	cl.mu.Lock()
	if cl.poisoned.Load() {
		cl.mu.Unlock()
		return &PoisonError{Name: cl.name}
	}
	acquired := start
	if cl.obs != nil {
		acquired = time.Now()
	}

	normal := false
	defer func() {
		if !normal {
			cl.poisoned.Store(true)
		}
		cl.mu.Unlock()
		if cl.obs != nil {
			cl.obs.LockReleased(cl.name, time.Since(acquired), !normal)
		}
	}()
	if cl.obs != nil {
		cl.obs.LockAcquired(cl.name, acquired.Sub(start))
	}
	if fn != nil {
		fn(&cl.val)
	}
	normal = true
	return nil
}

// Update replaces the value with fn(value) under exclusive access.
func (c *Container[T]) Update(fn func(T) T) error {
	return c.With(func(v *T) {
		if fn != nil {
			*v = fn(*v)
		}
	})
}

// Load returns a copy of the value taken under exclusive access.
func (c *Container[T]) Load() (T, error) {
	var out T
	err := c.With(func(v *T) { out = *v })
	return out, err
}

// Value reads the value without taking the lock. It is only valid for the
// sole remaining holder, and must not run concurrently with With on the same
// handle: while other handles are alive it returns a *SharedError.
//
// A poisoned container still yields its value together with a *PoisonError.
func (c *Container[T]) Value() (T, error) {
	var zero T
	if c.released.Load() {
		return zero, ErrReleased
	}
	cl := c.c
	if n := cl.refs.Load(); n != 1 {
		return zero, &SharedError{Name: cl.name, Refs: n}
	}
	v := cl.val
	if cl.poisoned.Load() {
		return v, &PoisonError{Name: cl.name}
	}
	return v, nil
}

// ClearPoison marks the container as consistent again. Callers use it once
// they have checked or repaired the value left by a failed critical section.
// A released handle returns ErrReleased and leaves the container untouched.
func (c *Container[T]) ClearPoison() error {
	if c.released.Load() {
		return ErrReleased
	}
	cl := c.c
	cl.mu.Lock()
	cl.poisoned.Store(false)
	cl.mu.Unlock()
	return nil
}

func (c *Container[T]) Poisoned() bool { return c.c.poisoned.Load() }

// Refs returns the number of live handles.
func (c *Container[T]) Refs() int64 { return c.c.refs.Load() }

func (c *Container[T]) Released() bool { return c.released.Load() }

func (c *Container[T]) Name() string { return c.c.name }

// Same reports whether both handles refer to the same value.
func (c *Container[T]) Same(other *Container[T]) bool {
	return other != nil && c.c == other.c
}
