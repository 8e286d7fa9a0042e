// Package errgroup provides an errgroup-shaped API over the local scope
// implementation, and a scope.Runner backed by golang.org/x/sync/errgroup so
// a Scope can run its workers on an errgroup.Group.
package errgroup

import (
	"context"

	xerrgroup "golang.org/x/sync/errgroup"

	"github.com/NetPo4ki/go-shared/scope"
)

// Group is an errgroup-like wrapper over scope.Scope. Unlike
// x/sync/errgroup, a failing function does not cancel its siblings.
type Group struct {
	s *scope.Scope
}

// New creates a Group whose functions run with ctx as their scope context.
func New(ctx context.Context, opts ...scope.Option) *Group {
	return &Group{s: scope.New(ctx, opts...)}
}

// Go starts a function. It should return a non-nil error to signal failure;
// a panic is reported as a failure as well.
func (g *Group) Go(f func() error) {
	if f == nil {
		return
	}
	g.s.Go(func(context.Context) error {
		return f()
	})
}

// Wait blocks until all functions have returned. It returns the failure of
// the earliest spawned function that failed, or nil on success.
func (g *Group) Wait() error {
	err := g.s.Wait()
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := multi.Unwrap(); len(errs) > 0 {
			return errs[0]
		}
	}
	return err
}

// Scope exposes the underlying scope, e.g. to inspect handles.
func (g *Group) Scope() *scope.Scope { return g.s }

// Runner runs scope workers as goroutines of an x/sync errgroup.Group.
// Workers never return errors to the group: failures are reported through
// scope outcomes.
type Runner struct {
	g xerrgroup.Group
}

func NewRunner() *Runner { return &Runner{} }

// Run implements scope.Runner.
func (r *Runner) Run(fn func()) {
	r.g.Go(func() error {
		fn()
		return nil
	})
}

// Drain waits until every goroutine started by Run has returned.
func (r *Runner) Drain() { _ = r.g.Wait() }
