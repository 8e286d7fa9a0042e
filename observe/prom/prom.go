// Package prom provides a Prometheus-backed observer for scopes and shared
// containers. A Metrics value implements scope.Observer, shared.Observer and
// prometheus.Collector, and also keeps plain counters for in-process
// inspection through GetSnapshot.
package prom

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shared"

// Outcome label values of the tasks_total counter.
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomePanicked  = "panicked"
)

// Metrics records task, join and lock activity.
type Metrics struct {
	// tasks
	activeTasks   atomic.Int64
	tasksSpawned  atomic.Int64
	tasksStarted  atomic.Int64
	tasksFinished atomic.Int64
	tasksErrored  atomic.Int64
	tasksPanicked atomic.Int64
	taskDurSumNs  atomic.Int64

	// scopes
	scopesCreated atomic.Int64
	joins         atomic.Int64
	joinWaitSumNs atomic.Int64

	// containers
	lockAcquisitions atomic.Int64
	lockWaitSumNs    atomic.Int64
	lockPoisonings   atomic.Int64
	liveHandles      atomic.Int64

	tasks        *prometheus.CounterVec
	active       prometheus.Gauge
	taskDuration prometheus.Histogram
	joinWait     prometheus.Histogram
	lockWait     *prometheus.HistogramVec
	lockHeld     *prometheus.HistogramVec
	poisoned     *prometheus.CounterVec
	handles      *prometheus.GaugeVec
	scopes       prometheus.Counter
}

// New returns a new Metrics observer. Register it with a
// prometheus.Registerer to export it.
func New() *Metrics {
	return &Metrics{
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Workers that terminated, by outcome.",
		}, []string{"outcome"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_active",
			Help:      "Workers currently running.",
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Worker run time.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
		}),
		joinWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "join_wait_seconds",
			Help:      "Time spent blocked in JoinAll and Wait.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
		}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for exclusive access.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 10, 8),
		}, []string{"container"}),
		lockHeld: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_held_seconds",
			Help:      "Time spent inside critical sections.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 10, 8),
		}, []string{"container"}),
		poisoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_poisoned_total",
			Help:      "Critical sections that terminated abnormally.",
		}, []string{"container"}),
		handles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handles_live",
			Help:      "Live handles per container.",
		}, []string{"container"}),
		scopes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scopes_created_total",
			Help:      "Scopes created.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.tasks, m.active, m.taskDuration, m.joinWait,
		m.lockWait, m.lockHeld, m.poisoned, m.handles, m.scopes,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// ScopeCreated records scope creation.
func (m *Metrics) ScopeCreated(_ context.Context) {
	m.scopesCreated.Add(1)
	m.scopes.Inc()
}

// ScopeJoined records a JoinAll or Wait and accumulates wait time.
func (m *Metrics) ScopeJoined(_ context.Context, wait time.Duration) {
	m.joins.Add(1)
	m.joinWaitSumNs.Add(wait.Nanoseconds())
	m.joinWait.Observe(wait.Seconds())
}

// TaskSpawned counts spawned workers.
func (m *Metrics) TaskSpawned(_ context.Context, _ int) {
	m.tasksSpawned.Add(1)
}

// TaskStarted increments active and started counters.
func (m *Metrics) TaskStarted(_ context.Context, _ int) {
	m.activeTasks.Add(1)
	m.tasksStarted.Add(1)
	m.active.Inc()
}

// TaskFinished decrements active, increments finished, and tracks error/panic and duration.
func (m *Metrics) TaskFinished(_ context.Context, _ int, dur time.Duration, err error, panicked bool) {
	m.activeTasks.Add(-1)
	m.tasksFinished.Add(1)
	m.active.Dec()
	outcome := outcomeCompleted
	switch {
	case panicked:
		m.tasksPanicked.Add(1)
		outcome = outcomePanicked
	case err != nil:
		m.tasksErrored.Add(1)
		outcome = outcomeFailed
	}
	m.tasks.WithLabelValues(outcome).Inc()
	m.taskDurSumNs.Add(dur.Nanoseconds())
	m.taskDuration.Observe(dur.Seconds())
}

// TaskJoined is a no-op; join latency is recorded per JoinAll/Wait.
func (m *Metrics) TaskJoined(_ context.Context, _ int, _ time.Duration) {}

// LockAcquired records the wait for exclusive access.
func (m *Metrics) LockAcquired(name string, wait time.Duration) {
	m.lockAcquisitions.Add(1)
	m.lockWaitSumNs.Add(wait.Nanoseconds())
	m.lockWait.WithLabelValues(name).Observe(wait.Seconds())
}

// LockReleased records the critical section length and poisonings.
func (m *Metrics) LockReleased(name string, held time.Duration, poisoned bool) {
	m.lockHeld.WithLabelValues(name).Observe(held.Seconds())
	if poisoned {
		m.lockPoisonings.Add(1)
		m.poisoned.WithLabelValues(name).Inc()
	}
}

// HandleAcquired tracks live handles.
func (m *Metrics) HandleAcquired(name string, _ int64) {
	m.liveHandles.Add(1)
	m.handles.WithLabelValues(name).Inc()
}

// HandleReleased tracks live handles.
func (m *Metrics) HandleReleased(name string, _ int64) {
	m.liveHandles.Add(-1)
	m.handles.WithLabelValues(name).Dec()
}

// Snapshot exposes a copy of current metric values for exporting/inspection.
type Snapshot struct {
	ActiveTasks      int64
	TasksSpawned     int64
	TasksStarted     int64
	TasksFinished    int64
	TasksErrored     int64
	TasksPanicked    int64
	TaskDurSumNs     int64
	ScopesCreated    int64
	Joins            int64
	JoinWaitSumNs    int64
	LockAcquisitions int64
	LockWaitSumNs    int64
	LockPoisonings   int64
	LiveHandles      int64
}

// GetSnapshot returns the current metrics snapshot.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		ActiveTasks:      m.activeTasks.Load(),
		TasksSpawned:     m.tasksSpawned.Load(),
		TasksStarted:     m.tasksStarted.Load(),
		TasksFinished:    m.tasksFinished.Load(),
		TasksErrored:     m.tasksErrored.Load(),
		TasksPanicked:    m.tasksPanicked.Load(),
		TaskDurSumNs:     m.taskDurSumNs.Load(),
		ScopesCreated:    m.scopesCreated.Load(),
		Joins:            m.joins.Load(),
		JoinWaitSumNs:    m.joinWaitSumNs.Load(),
		LockAcquisitions: m.lockAcquisitions.Load(),
		LockWaitSumNs:    m.lockWaitSumNs.Load(),
		LockPoisonings:   m.lockPoisonings.Load(),
		LiveHandles:      m.liveHandles.Load(),
	}
}
