package shared

import "time"

type multiObserver []Observer

// Observers combines several observers into one; nil entries are skipped.
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

func (m multiObserver) LockAcquired(name string, wait time.Duration) {
	for _, o := range m {
		o.LockAcquired(name, wait)
	}
}

func (m multiObserver) LockReleased(name string, held time.Duration, poisoned bool) {
	for _, o := range m {
		o.LockReleased(name, held, poisoned)
	}
}

func (m multiObserver) HandleAcquired(name string, refs int64) {
	for _, o := range m {
		o.HandleAcquired(name, refs)
	}
}

func (m multiObserver) HandleReleased(name string, refs int64) {
	for _, o := range m {
		o.HandleReleased(name, refs)
	}
}
