package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskpulse/backend/domain"
)

// CalendarIndex receives deadline changes so day buckets stay current.
type CalendarIndex interface {
	OnTaskChanged(id string, oldDeadline, newDeadline *time.Time)
}

// ReminderScheduler receives fire-time changes. The version identifies the
// registration; entries carrying an older version are stale.
type ReminderScheduler interface {
	OnTaskChanged(id string, oldFireTime, newFireTime *time.Time, version uint64)
}

type entry struct {
	task    domain.Task
	version uint64
}

// Store is the in-memory source of truth for tasks. Every mutation
// synchronously notifies the calendar index and the reminder scheduler
// before the mutating call returns, so derived state never lags the store.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	order    []string
	ver      uint64
	calendar CalendarIndex
	sched    ReminderScheduler
	now      func() time.Time
}

func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Bind attaches the derived-state listeners. Called once during wiring;
// either may be nil in tests that exercise the store alone.
func (s *Store) Bind(calendar CalendarIndex, sched ReminderScheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar = calendar
	s.sched = sched
}

// SetClock overrides the wall clock, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// nextVersion issues a version number from a store-global counter. The
// counter is never reset, not even by Restore, so a version handed to the
// scheduler can never be issued again for any task. Callers hold s.mu.
func (s *Store) nextVersion() uint64 {
	s.ver++
	return s.ver
}

// Insert validates the fields, assigns a fresh identity and registers the
// task with the listeners. Identities are UUIDs and are never reused.
func (s *Store) Insert(fields domain.Task) (string, error) {
	if err := fields.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := fields.Clone()
	t.ID = uuid.NewString()
	t.ReminderFired = false
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt

	v := s.nextVersion()
	s.entries[t.ID] = &entry{task: t, version: v}
	s.order = append(s.order, t.ID)

	s.notify(t.ID, nil, &t, v)
	return t.ID, nil
}

// Update replaces the mutable fields of an existing task. A new version is
// issued so any scheduler entry registered for the previous state becomes
// stale. A change of fire time clears the fired flag, making the new
// registration eligible to fire.
func (s *Store) Update(id string, fields domain.Task) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return domain.ErrTaskNotFound
	}

	old := e.task
	t := fields.Clone()
	t.ID = old.ID
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = s.now()
	t.ReminderFired = old.ReminderFired
	if !sameTime(old.ReminderFireTime(), t.ReminderFireTime()) {
		t.ReminderFired = false
	}

	e.task = t
	e.version = s.nextVersion()

	s.notify(id, &old, &t, e.version)
	return nil
}

// Delete removes the task and deregisters it from the listeners. The entry
// is gone afterwards, so any queued reminder fails its version check.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	old := e.task
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.notify(id, &old, nil, s.nextVersion())
	return nil
}

func (s *Store) Get(id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return e.task.Clone(), nil
}

// List returns all tasks in stable insertion order.
func (s *Store) List() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].task.Clone())
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns the task together with its current registration version.
// The scheduler uses it to decide whether a popped queue entry is stale.
func (s *Store) Snapshot(id string) (domain.Task, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return domain.Task{}, 0, false
	}
	return e.task.Clone(), e.version, true
}

// MarkReminderFired records that the reminder was emitted. It deliberately
// bumps neither the version nor the listeners: the registration it belongs
// to has just been consumed.
func (s *Store) MarkReminderFired(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.task.ReminderFired = true
	}
}

// Restore replaces the entire store content with the given records,
// preserving their identities and order. Listeners are notified for every
// record as if it were freshly inserted. Each restored record gets a fresh
// version from the global counter, so a queued reminder registered before
// the restore can never match a restored entry, even when the id survives.
func (s *Store) Restore(tasks []domain.Task) error {
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		old := s.entries[id].task
		s.notify(id, &old, nil, s.nextVersion())
	}
	s.entries = make(map[string]*entry, len(tasks))
	s.order = s.order[:0]

	for _, rec := range tasks {
		t := rec.Clone()
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		v := s.nextVersion()
		s.entries[t.ID] = &entry{task: t, version: v}
		s.order = append(s.order, t.ID)
		s.notify(t.ID, nil, &t, v)
	}
	return nil
}

func (s *Store) notify(id string, old, new *domain.Task, version uint64) {
	if s.calendar != nil {
		s.calendar.OnTaskChanged(id, deadlineOf(old), deadlineOf(new))
	}
	if s.sched != nil {
		s.sched.OnTaskChanged(id, fireTimeOf(old), fireTimeOf(new), version)
	}
}

func deadlineOf(t *domain.Task) *time.Time {
	if t == nil {
		return nil
	}
	return t.Deadline
}

func fireTimeOf(t *domain.Task) *time.Time {
	if t == nil || t.IsCompleted() {
		return nil
	}
	return t.ReminderFireTime()
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
