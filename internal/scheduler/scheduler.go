// Package scheduler decides which reminders are due at a given instant and
// guarantees each registration fires at most once.
package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
)

// TaskSource exposes the store state the scheduler needs to validate queue
// entries when they are popped.
type TaskSource interface {
	Snapshot(id string) (domain.Task, uint64, bool)
	MarkReminderFired(id string)
}

// item is one pending registration. Entries are never removed eagerly;
// an edit or delete bumps the task's version and the entry left behind is
// discarded when popped (lazy invalidation).
type item struct {
	fireAt  time.Time
	id      string
	version uint64
	seq     uint64
}

type queue []*item

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if !q[i].fireAt.Equal(q[j].fireAt) {
		return q[i].fireAt.Before(q[j].fireAt)
	}
	// identical fire times resolve by registration order
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*item)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// Scheduler maintains the priority queue of pending reminder registrations.
type Scheduler struct {
	mu     sync.Mutex
	q      queue
	seq    uint64
	source TaskSource
	logger *zap.Logger
	now    func() time.Time
}

func New(source TaskSource, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the wall clock, for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// OnTaskChanged registers the task's new fire time. Any entry registered
// for a previous version stays in the queue but no longer matches the
// task's current version, so it is dropped when popped. Fire times already
// in the past are not registered.
func (s *Scheduler) OnTaskChanged(id string, oldFireTime, newFireTime *time.Time, version uint64) {
	_ = oldFireTime // superseded lazily via the version check

	if newFireTime == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !newFireTime.After(s.now()) {
		s.logger.Debug("skipping past fire time",
			zap.String("task_id", id),
			zap.Time("fire_at", *newFireTime))
		return
	}

	s.seq++
	heap.Push(&s.q, &item{
		fireAt:  *newFireTime,
		id:      id,
		version: version,
		seq:     s.seq,
	})
}

// CheckDue pops every entry whose fire time has passed and returns the
// tasks that are genuinely due, in ascending fire-time order with ties
// broken by registration order. Each emitted task is marked fired through
// the source so repeated calls never emit it again. Stale entries are
// discarded silently.
func (s *Scheduler) CheckDue(now time.Time) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.Task
	for s.q.Len() > 0 {
		next := s.q[0]
		if next.fireAt.After(now) {
			break
		}
		it := heap.Pop(&s.q).(*item)

		task, version, ok := s.source.Snapshot(it.id)
		if !ok || version != it.version || task.IsCompleted() || task.ReminderFired {
			s.logger.Debug("discarding stale reminder entry",
				zap.String("task_id", it.id),
				zap.Uint64("entry_version", it.version))
			continue
		}

		s.source.MarkReminderFired(it.id)
		task.ReminderFired = true
		due = append(due, task)
	}
	return due
}

// Pending returns the queue length, stale entries included.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Len()
}
