// Package tracker ties the task store, calendar index, reminder scheduler
// and snapshot persistence into one engine. All operations funnel through a
// single mutex, so store mutation and scheduler polling never interleave.
package tracker

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/internal/calendar"
	"github.com/taskpulse/backend/internal/export"
	"github.com/taskpulse/backend/internal/infrastructure/snapshot"
	"github.com/taskpulse/backend/internal/scheduler"
	"github.com/taskpulse/backend/internal/store"
)

// FilterKind selects the task-list classification applied by List.
type FilterKind string

const (
	FilterAll       FilterKind = "all"
	FilterActive    FilterKind = "active"
	FilterCompleted FilterKind = "completed"
	FilterOverdue   FilterKind = "overdue"
)

// Filter narrows List output. Classification and substring search are a
// view-layer concern applied over the store's listing; the store itself
// holds no filtering logic.
type Filter struct {
	Kind   FilterKind
	Query  string
	Limit  int
	Offset int
}

// Engine is the application core: the single owner of all task state.
type Engine struct {
	mu        sync.Mutex
	store     *store.Store
	index     *calendar.Index
	sched     *scheduler.Scheduler
	snapshots *snapshot.Store
	logger    *zap.Logger
	now       func() time.Time
}

// New wires the store to its derived-state listeners. snapshots may be nil
// when persistence is disabled.
func New(snapshots *snapshot.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	st := store.New()
	ix := calendar.NewIndex()
	sc := scheduler.New(st, logger)
	st.Bind(ix, sc)

	return &Engine{
		store:     st,
		index:     ix,
		sched:     sc,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the wall clock for the engine and its components.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
	e.store.SetClock(now)
	e.sched.SetClock(now)
}

// Create inserts a new task. Missing priority and status fall back to the
// defaults the original form used.
func (e *Engine) Create(ctx context.Context, fields domain.Task) (domain.Task, error) {
	_ = ctx

	if fields.Priority == "" {
		fields.Priority = domain.PriorityMedium
	}
	if fields.Status == "" {
		fields.Status = domain.StatusNotStarted
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.store.Insert(fields)
	if err != nil {
		return domain.Task{}, err
	}
	task, err := e.store.Get(id)
	if err != nil {
		return domain.Task{}, err
	}
	e.logger.Debug("task created", zap.String("task_id", id), zap.String("title", task.Title))
	return task, nil
}

func (e *Engine) Update(ctx context.Context, id string, fields domain.Task) (domain.Task, error) {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Update(id, fields); err != nil {
		return domain.Task{}, err
	}
	e.logger.Debug("task updated", zap.String("task_id", id))
	return e.store.Get(id)
}

func (e *Engine) Delete(ctx context.Context, id string) error {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Delete(id); err != nil {
		return err
	}
	e.logger.Debug("task deleted", zap.String("task_id", id))
	return nil
}

// Complete flips the task status to completed, which also cancels any
// pending reminder registration.
func (e *Engine) Complete(ctx context.Context, id string) (domain.Task, error) {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.store.Get(id)
	if err != nil {
		return domain.Task{}, err
	}
	task.Status = domain.StatusCompleted
	if err := e.store.Update(id, task); err != nil {
		return domain.Task{}, err
	}
	return e.store.Get(id)
}

func (e *Engine) Get(ctx context.Context, id string) (domain.Task, error) {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// List returns tasks in insertion order, narrowed by the filter.
func (e *Engine) List(ctx context.Context, filter Filter) []domain.Task {
	_ = ctx

	e.mu.Lock()
	tasks := e.store.List()
	now := e.now()
	e.mu.Unlock()

	out := tasks[:0]
	query := strings.ToLower(filter.Query)
	for _, t := range tasks {
		if !matchKind(&t, filter.Kind, now) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Title), query) &&
			!strings.Contains(strings.ToLower(t.Description), query) {
			continue
		}
		out = append(out, t)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out
}

func matchKind(t *domain.Task, kind FilterKind, now time.Time) bool {
	switch kind {
	case FilterCompleted:
		return t.IsCompleted()
	case FilterOverdue:
		return t.IsOverdue(now)
	case FilterActive:
		return !t.IsCompleted() && !t.IsOverdue(now)
	default:
		return true
	}
}

// TasksOnDate returns the tasks due on the given day, ordered by deadline.
func (e *Engine) TasksOnDate(ctx context.Context, day calendar.Day) []domain.Task {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.index.TasksOnDate(day)
	tasks := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		if t, err := e.store.Get(id); err == nil {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		di, dj := tasks[i].Deadline, tasks[j].Deadline
		if !di.Equal(*dj) {
			return di.Before(*dj)
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks
}

// DatesWithTasks returns every calendar day holding at least one task.
func (e *Engine) DatesWithTasks(ctx context.Context) []calendar.Day {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.DatesWithTasks()
}

// CheckDue returns the reminders newly due at the given instant.
func (e *Engine) CheckDue(now time.Time) []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.CheckDue(now)
}

// ExportState returns the full task list as persistable records.
func (e *Engine) ExportState(ctx context.Context) []domain.Task {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.List()
}

// ImportState replaces the engine state with the given records. A reminder
// whose fire time already passed and was never fired is treated as missed:
// it is marked fired and never emitted, rather than firing on the next tick.
func (e *Engine) ImportState(ctx context.Context, tasks []domain.Task) error {
	_ = ctx

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	records := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		rec := t.Clone()
		if fire := rec.ReminderFireTime(); fire != nil && !rec.ReminderFired && !fire.After(now) {
			rec.ReminderFired = true
		}
		records = append(records, rec)
	}

	if err := e.store.Restore(records); err != nil {
		return err
	}
	e.logger.Info("state imported", zap.Int("tasks", len(records)))
	return nil
}

// Save persists the current state to the snapshot store.
func (e *Engine) Save(ctx context.Context) error {
	if e.snapshots == nil {
		return nil
	}
	if err := e.snapshots.Save(e.ExportState(ctx)); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "snapshot save failed", err)
	}
	e.logger.Info("snapshot saved", zap.String("path", e.snapshots.Path()))
	return nil
}

// Load restores engine state from the snapshot store.
func (e *Engine) Load(ctx context.Context) error {
	if e.snapshots == nil {
		return nil
	}
	tasks, err := e.snapshots.Load()
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "snapshot load failed", err)
	}
	return e.ImportState(ctx, tasks)
}

// WriteCSV streams the task list as CSV.
func (e *Engine) WriteCSV(ctx context.Context, w io.Writer) error {
	return export.WriteCSV(w, e.ExportState(ctx))
}

// TaskCount returns the number of stored tasks.
func (e *Engine) TaskCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}

// PendingReminders returns the scheduler queue length, stale entries included.
func (e *Engine) PendingReminders() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sched.Pending()
}

// RebuiltIndexMatches reports whether the incrementally maintained calendar
// index equals one rebuilt from the current store content.
func (e *Engine) RebuiltIndexMatches() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index.Equal(calendar.Rebuild(e.store.List()))
}
