package scope

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/NetPo4ki/go-shared/shared"
)

type Option func(*Options)

type Options struct {
	Observer Observer
	Runner   Runner
}

func defaultOptions() Options { return Options{Runner: goRunner{}} }

func WithObserver(obs Observer) Option { return func(o *Options) { o.Observer = obs } }

// WithRunner sets the execution primitive that backs spawned workers.
func WithRunner(r Runner) Option {
	return func(o *Options) {
		if r != nil {
			o.Runner = r
		}
	}
}

// Runner starts fn concurrently with the caller. Run must not block until fn
// finishes.
type Runner interface {
	Run(fn func())
}

type goRunner struct{}

func (goRunner) Run(fn func()) { go fn() }

type Observer interface {
	ScopeCreated(ctx context.Context)
	ScopeJoined(ctx context.Context, wait time.Duration)
	TaskSpawned(ctx context.Context, id int)
	TaskStarted(ctx context.Context, id int)
	TaskFinished(ctx context.Context, id int, dur time.Duration, err error, panicked bool)
	TaskJoined(ctx context.Context, id int, wait time.Duration)
}

// Scope spawns workers and joins them. The scope never cancels its workers:
// once spawned, a worker runs until it returns or fails.
type Scope struct {
	ctx     context.Context
	mu      sync.Mutex
	handles []*Handle

	opts Options
	obs  Observer
}

func New(parent context.Context, optFns ...Option) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	s := &Scope{ctx: parent, opts: defaultOptions()}
	for _, fn := range optFns {
		fn(&s.opts)
	}
	s.obs = s.opts.Observer
	if s.obs != nil {
		s.obs.ScopeCreated(s.ctx)
	}
	return s
}

// Context is the context handed to every worker.
func (s *Scope) Context() context.Context { return s.ctx }

// Go starts fn concurrently and returns its handle without waiting.
func (s *Scope) Go(fn func(ctx context.Context) error) *Handle {
	if fn == nil {
		fn = func(context.Context) error { return nil }
	}
	h := &Handle{scope: s, done: make(chan struct{})}
	s.mu.Lock()
	h.id = len(s.handles)
	s.handles = append(s.handles, h)
	s.mu.Unlock()

	if s.obs != nil {
		s.obs.TaskSpawned(s.ctx, h.id)
	}
	s.opts.Runner.Run(func() { s.run(h, fn) })
	return h
}

func (s *Scope) run(h *Handle, fn func(ctx context.Context) error) {
	h.status.Store(int32(Running))
	start := time.Now()

	var err error
	returned := false
	defer func() {
		out := Outcome{Status: Completed}
		panicked := false
		if r := recover(); r != nil {
			panicked = true
			out = Outcome{Status: Failed, Err: &WorkerFailedError{ID: h.id, Panicked: true, Value: r, Stack: debug.Stack()}}
		} else if !returned {
			out = Outcome{Status: Failed, Err: &WorkerFailedError{ID: h.id, Cause: ErrWorkerExited}}
		} else if err != nil {
			out = Outcome{Status: Failed, Err: &WorkerFailedError{ID: h.id, Cause: err}}
		}
		out.Duration = time.Since(start)
		h.outcome = out
		h.status.Store(int32(out.Status))
		if s.obs != nil {
			s.obs.TaskFinished(s.ctx, h.id, out.Duration, out.Err, panicked)
		}
		close(h.done)
	}()

	if s.obs != nil {
		s.obs.TaskStarted(s.ctx, h.id)
	}
	err = fn(s.ctx)
	returned = true
}

// Join blocks until the worker behind h terminates and returns its outcome.
// A handle can be joined once; later calls return ErrDoubleJoin, including
// calls made while the first Join is still waiting.
func (s *Scope) Join(h *Handle) (Outcome, error) {
	if h == nil || h.scope != s {
		return Outcome{}, ErrForeignHandle
	}
	if !h.joined.CompareAndSwap(false, true) {
		return Outcome{}, &JoinError{ID: h.id, Err: ErrDoubleJoin}
	}
	return s.consume(h), nil
}

func (s *Scope) consume(h *Handle) Outcome {
	var start time.Time
	if s.obs != nil {
		start = time.Now()
	}
	<-h.done
	out := h.outcome
	h.status.Store(int32(Consumed))
	if s.obs != nil {
		s.obs.TaskJoined(s.ctx, h.id, time.Since(start))
	}
	return out
}

// JoinAll joins hs in order. Outcomes line up with hs; Join misuse for any
// handle is reported in the returned error and leaves a zero Outcome in its
// slot. Worker failures are reported only through the outcomes.
func (s *Scope) JoinAll(hs ...*Handle) ([]Outcome, error) {
	var start time.Time
	if s.obs != nil {
		start = time.Now()
	}
	outs := make([]Outcome, len(hs))
	var errs []error
	for i, h := range hs {
		out, err := s.Join(h)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outs[i] = out
	}
	if s.obs != nil {
		s.obs.ScopeJoined(s.ctx, time.Since(start))
	}
	return outs, errors.Join(errs...)
}

// Wait blocks until every worker spawned so far has terminated, consumes the
// handles nobody joined yet, and returns the failures of all workers in spawn
// order. It returns nil when every worker completed.
func (s *Scope) Wait() error {
	var start time.Time
	if s.obs != nil {
		start = time.Now()
	}
	var errs []error
	for _, h := range s.Handles() {
		var out Outcome
		if h.joined.CompareAndSwap(false, true) {
			out = s.consume(h)
		} else {
			<-h.done
			out = h.outcome
		}
		if out.Err != nil {
			errs = append(errs, out.Err)
		}
	}
	if s.obs != nil {
		s.obs.ScopeJoined(s.ctx, time.Since(start))
	}
	return errors.Join(errs...)
}

// Handles returns the handles spawned so far, in spawn order.
func (s *Scope) Handles() []*Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Handle(nil), s.handles...)
}

// GoShared spawns fn with its own handle to c. The handle is cloned before
// the worker starts and released when it exits, whether it returns, panics
// or calls runtime.Goexit, so it is gone before Join on the worker returns.
// Once every such worker is joined, the caller's handle is the sole holder
// and c.Value is valid.
func GoShared[T any](s *Scope, c *shared.Container[T], fn func(ctx context.Context, c *shared.Container[T]) error) *Handle {
	own := c.Clone()
	return s.Go(func(ctx context.Context) error {
		defer own.Release()
		if fn == nil {
			return nil
		}
		return fn(ctx, own)
	})
}
