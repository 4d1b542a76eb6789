package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Counter names used across the engine.
const (
	AssignmentsManual      = "assignments_manual_total"
	AssignmentsAuto        = "assignments_auto_total"
	ReassignmentsAuto      = "reassignments_auto_total"
	ResponsesAccepted      = "responses_accepted_total"
	ResponsesRejected      = "responses_rejected_total"
	ManualInterventions    = "manual_interventions_total"
	CapacityExhausted      = "capacity_exhausted_total"
	PaymentsProcessed      = "payments_processed_total"
	PaymentsDuplicate      = "payments_duplicate_total"
	BackgroundTasksDropped = "background_tasks_dropped_total"
	BackgroundTasksFailed  = "background_tasks_failed_total"
	BackgroundTasksDone    = "background_tasks_done_total"
	BackgroundTaskMillis   = "background_task_duration_ms_total"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Registry is a set of named counters. A nil *Registry discards updates.
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
}

func NewRegistry() *Registry {
	return &Registry{counters: make(map[string]*Counter)}
}

func (r *Registry) Counter(name string) *Counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.counters[name]; !ok {
		c = &Counter{}
		r.counters[name] = c
	}
	return c
}

func (r *Registry) Inc(name string) {
	if r == nil {
		return
	}
	r.Counter(name).Inc()
}

func (r *Registry) Add(name string, n uint64) {
	if r == nil {
		return
	}
	r.Counter(name).Add(n)
}

func (r *Registry) Value(name string) uint64 {
	if r == nil {
		return 0
	}
	return r.Counter(name).Load()
}

type Sample struct {
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// Snapshot returns all counters sorted by name.
func (r *Registry) Snapshot() []Sample {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Sample, 0, len(r.counters))
	for name, c := range r.counters {
		out = append(out, Sample{Name: name, Value: c.Load()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Timer measures elapsed wall time from StartTimer.
type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
