package tracker

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/internal/calendar"
	"github.com/taskpulse/backend/internal/infrastructure/snapshot"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 10, hour, min, 0, 0, time.Local)
}

func newEngine(t *testing.T, now time.Time) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: now}
	e := New(nil, nil)
	e.SetClock(clock.Now)
	return e, clock
}

func create(t *testing.T, e *Engine, title string, deadline *time.Time, offset *domain.ReminderOffset) domain.Task {
	t.Helper()
	task, err := e.Create(context.Background(), domain.Task{
		Title:          title,
		Priority:       domain.PriorityMedium,
		Status:         domain.StatusNotStarted,
		Deadline:       deadline,
		ReminderOffset: offset,
	})
	require.NoError(t, err)
	return task
}

func TestCreateAppliesDefaults(t *testing.T) {
	e, _ := newEngine(t, at(9, 0))

	task, err := e.Create(context.Background(), domain.Task{Title: "bare"})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, domain.StatusNotStarted, task.Status)
	assert.NotEmpty(t, task.ID)

	_, err = e.Create(context.Background(), domain.Task{})
	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}

func TestListFilterAndSearch(t *testing.T) {
	e, _ := newEngine(t, at(12, 0))
	ctx := context.Background()

	past := at(10, 0)
	future := at(15, 0)

	create(t, e, "groceries", &past, nil) // overdue
	plants := create(t, e, "water plants", &future, nil)
	done := create(t, e, "laundry", nil, nil)
	_, err := e.Complete(ctx, done.ID)
	require.NoError(t, err)

	assert.Len(t, e.List(ctx, Filter{Kind: FilterAll}), 3)

	overdue := e.List(ctx, Filter{Kind: FilterOverdue})
	require.Len(t, overdue, 1)
	assert.Equal(t, "groceries", overdue[0].Title)

	active := e.List(ctx, Filter{Kind: FilterActive})
	require.Len(t, active, 1)
	assert.Equal(t, plants.ID, active[0].ID)

	completed := e.List(ctx, Filter{Kind: FilterCompleted})
	require.Len(t, completed, 1)
	assert.Equal(t, done.ID, completed[0].ID)

	found := e.List(ctx, Filter{Query: "PLANT"})
	require.Len(t, found, 1)
	assert.Equal(t, plants.ID, found[0].ID)

	assert.Len(t, e.List(ctx, Filter{Limit: 2}), 2)
	assert.Len(t, e.List(ctx, Filter{Offset: 2}), 1)
	assert.Empty(t, e.List(ctx, Filter{Offset: 5}))
}

// Completing a task flips overdue off immediately, with no scheduler tick
// involved.
func TestOverdueFlipsOnCompletion(t *testing.T) {
	e, _ := newEngine(t, at(12, 0))
	ctx := context.Background()

	past := at(10, 0)
	task := create(t, e, "late", &past, nil)

	require.Len(t, e.List(ctx, Filter{Kind: FilterOverdue}), 1)

	_, err := e.Complete(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, e.List(ctx, Filter{Kind: FilterOverdue}))
}

func TestCalendarQueries(t *testing.T) {
	e, _ := newEngine(t, at(8, 0))
	ctx := context.Background()

	morning := at(9, 0)
	evening := at(18, 0)
	nextDay := morning.AddDate(0, 0, 1)

	b := create(t, e, "evening task", &evening, nil)
	a := create(t, e, "morning task", &morning, nil)
	c := create(t, e, "tomorrow", &nextDay, nil)

	days := e.DatesWithTasks(ctx)
	assert.Equal(t, []calendar.Day{"2024-01-10", "2024-01-11"}, days)

	onDay := e.TasksOnDate(ctx, calendar.DayOf(morning))
	require.Len(t, onDay, 2)
	assert.Equal(t, a.ID, onDay[0].ID, "sorted by time of day")
	assert.Equal(t, b.ID, onDay[1].ID)

	// moving a deadline re-buckets, deleting removes
	moved := a
	movedDeadline := nextDay.Add(time.Hour)
	moved.Deadline = &movedDeadline
	_, err := e.Update(ctx, a.ID, moved)
	require.NoError(t, err)
	require.NoError(t, e.Delete(ctx, c.ID))

	assert.True(t, e.RebuiltIndexMatches())
	assert.Len(t, e.TasksOnDate(ctx, calendar.DayOf(nextDay)), 1)
}

func TestCheckDueMarksFired(t *testing.T) {
	e, _ := newEngine(t, at(9, 0))
	offset := domain.Offset15Minutes
	deadline := at(10, 0)
	task := create(t, e, "remind me", &deadline, &offset)

	assert.Empty(t, e.CheckDue(at(9, 44)))

	due := e.CheckDue(at(9, 46))
	require.Len(t, due, 1)
	assert.Equal(t, task.ID, due[0].ID)
	assert.True(t, due[0].ReminderFired)

	assert.Empty(t, e.CheckDue(at(9, 50)))
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	snaps, err := snapshot.Open(path)
	require.NoError(t, err)
	defer snaps.Close()

	ctx := context.Background()
	clock := &fakeClock{now: at(9, 0)}

	e := New(snaps, nil)
	e.SetClock(clock.Now)

	offset := domain.Offset15Minutes
	d1 := at(10, 0)
	d2 := at(14, 0)
	fired := create(t, e, "already shown", &d1, &offset)
	pending := create(t, e, "still pending", &d2, &offset)

	require.Len(t, e.CheckDue(at(9, 46)), 1)
	require.NoError(t, e.Save(ctx))

	// simulate a restart at 11:00: the fired reminder stays fired, the
	// pending one is still registered for 13:45
	clock.Set(at(11, 0))
	restarted := New(snaps, nil)
	restarted.SetClock(clock.Now)
	require.NoError(t, restarted.Load(ctx))

	list := restarted.List(ctx, Filter{})
	require.Len(t, list, 2)
	assert.Equal(t, fired.ID, list[0].ID, "insertion order survives reload")
	assert.Equal(t, pending.ID, list[1].ID)
	assert.True(t, list[0].ReminderFired)

	assert.Empty(t, restarted.CheckDue(at(11, 0)), "fired reminder does not re-fire after reload")

	due := restarted.CheckDue(at(13, 46))
	require.Len(t, due, 1)
	assert.Equal(t, pending.ID, due[0].ID)
}

// A reminder whose fire time passed while the process was down is treated
// as missed, not re-fired.
func TestImportSuppressesPastUnfiredReminder(t *testing.T) {
	e, _ := newEngine(t, at(12, 0))
	ctx := context.Background()

	offset := domain.Offset15Minutes
	past := at(10, 0)
	future := at(14, 0)
	records := []domain.Task{
		{ID: "missed", Title: "missed", Priority: domain.PriorityLow, Status: domain.StatusNotStarted,
			Deadline: &past, ReminderOffset: &offset},
		{ID: "upcoming", Title: "upcoming", Priority: domain.PriorityLow, Status: domain.StatusNotStarted,
			Deadline: &future, ReminderOffset: &offset},
	}
	require.NoError(t, e.ImportState(ctx, records))

	missed, err := e.Get(ctx, "missed")
	require.NoError(t, err)
	assert.True(t, missed.ReminderFired, "past fire time marked as already missed")

	assert.Empty(t, e.CheckDue(at(12, 0)))

	due := e.CheckDue(at(13, 46))
	require.Len(t, due, 1)
	assert.Equal(t, "upcoming", due[0].ID)
}

// Re-importing the current state must not revive the registration a prior
// edit superseded: the reminder fires once, at the edited time only.
func TestImportDoesNotReviveSupersededReminder(t *testing.T) {
	e, _ := newEngine(t, at(9, 0))
	ctx := context.Background()

	offset := domain.Offset15Minutes
	deadline := at(10, 0)
	task := create(t, e, "meeting", &deadline, &offset)

	moved := task
	movedDeadline := at(14, 0)
	moved.Deadline = &movedDeadline
	_, err := e.Update(ctx, task.ID, moved)
	require.NoError(t, err)

	require.NoError(t, e.ImportState(ctx, e.ExportState(ctx)))

	assert.Empty(t, e.CheckDue(at(10, 0)), "old fire time stays superseded across import")

	due := e.CheckDue(at(13, 46))
	require.Len(t, due, 1)
	assert.Equal(t, task.ID, due[0].ID)

	assert.Empty(t, e.CheckDue(at(13, 50)))
}

func TestWriteCSV(t *testing.T) {
	e, _ := newEngine(t, at(9, 0))
	create(t, e, "export me", nil, nil)

	var buf bytes.Buffer
	require.NoError(t, e.WriteCSV(context.Background(), &buf))
	assert.Contains(t, buf.String(), "export me")
	assert.Contains(t, buf.String(), "Title,Description,Priority,Status,Deadline,Reminder")
}
