package scope

import (
	"context"
	"time"
)

type multiObserver []Observer

// Observers combines several observers into one; nil entries are skipped.
// Hooks run in the order given.
func Observers(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return nil
	case 1:
		return m[0]
	}
	return m
}

func (m multiObserver) ScopeCreated(ctx context.Context) {
	for _, o := range m {
		o.ScopeCreated(ctx)
	}
}

func (m multiObserver) ScopeJoined(ctx context.Context, wait time.Duration) {
	for _, o := range m {
		o.ScopeJoined(ctx, wait)
	}
}

func (m multiObserver) TaskSpawned(ctx context.Context, id int) {
	for _, o := range m {
		o.TaskSpawned(ctx, id)
	}
}

func (m multiObserver) TaskStarted(ctx context.Context, id int) {
	for _, o := range m {
		o.TaskStarted(ctx, id)
	}
}

func (m multiObserver) TaskFinished(ctx context.Context, id int, dur time.Duration, err error, panicked bool) {
	for _, o := range m {
		o.TaskFinished(ctx, id, dur, err, panicked)
	}
}

func (m multiObserver) TaskJoined(ctx context.Context, id int, wait time.Duration) {
	for _, o := range m {
		o.TaskJoined(ctx, id, wait)
	}
}
