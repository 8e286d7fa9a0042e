// Package zlog provides a zerolog-backed observer for scopes and shared
// containers. Routine events are logged at debug level; worker failures and
// poisoned locks are logged as errors.
package zlog

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Observer implements scope.Observer and shared.Observer.
type Observer struct {
	log zerolog.Logger
}

// New returns an observer writing to l.
func New(l zerolog.Logger) *Observer { return &Observer{log: l} }

func (o *Observer) ScopeCreated(_ context.Context) {
	o.log.Debug().Msg("scope created")
}

func (o *Observer) ScopeJoined(_ context.Context, wait time.Duration) {
	o.log.Debug().Dur("wait", wait).Msg("scope joined")
}

func (o *Observer) TaskSpawned(_ context.Context, id int) {
	o.log.Debug().Int("task", id).Msg("task spawned")
}

func (o *Observer) TaskStarted(_ context.Context, id int) {
	o.log.Debug().Int("task", id).Msg("task started")
}

func (o *Observer) TaskFinished(_ context.Context, id int, dur time.Duration, err error, panicked bool) {
	if err == nil {
		o.log.Debug().Int("task", id).Dur("duration", dur).Msg("task completed")
		return
	}
	o.log.Error().Err(err).Int("task", id).Dur("duration", dur).Bool("panicked", panicked).Msg("task failed")
}

func (o *Observer) TaskJoined(_ context.Context, id int, wait time.Duration) {
	o.log.Debug().Int("task", id).Dur("wait", wait).Msg("task joined")
}

func (o *Observer) LockAcquired(name string, wait time.Duration) {
	o.log.Trace().Str("container", name).Dur("wait", wait).Msg("lock acquired")
}

func (o *Observer) LockReleased(name string, held time.Duration, poisoned bool) {
	if poisoned {
		o.log.Error().Str("container", name).Dur("held", held).Msg("lock poisoned")
		return
	}
	o.log.Trace().Str("container", name).Dur("held", held).Msg("lock released")
}

func (o *Observer) HandleAcquired(name string, refs int64) {
	o.log.Trace().Str("container", name).Int64("refs", refs).Msg("handle acquired")
}

func (o *Observer) HandleReleased(name string, refs int64) {
	e := o.log.Trace()
	if refs == 0 {
		e = o.log.Debug()
	}
	e.Str("container", name).Int64("refs", refs).Msg("handle released")
}
