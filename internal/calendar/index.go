// Package calendar maintains the date to task-set index used by the
// calendar view. The index is derived state: after any sequence of store
// mutations it must equal the index rebuilt from scratch from the store
// content.
package calendar

import (
	"sort"
	"sync"
	"time"

	"github.com/taskpulse/backend/domain"
)

const dayLayout = "2006-01-02"

// Day identifies a calendar date in the host's local time, without a time
// component.
type Day string

// DayOf truncates an instant to its local calendar date.
func DayOf(t time.Time) Day {
	return Day(t.Local().Format(dayLayout))
}

// ParseDay parses the YYYY-MM-DD form used by the API.
func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(dayLayout, s, time.Local)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "date must be YYYY-MM-DD", err)
	}
	return DayOf(t), nil
}

// Index maps calendar days to the ids of tasks whose deadline falls on them.
type Index struct {
	mu      sync.RWMutex
	buckets map[Day]map[string]struct{}
}

func NewIndex() *Index {
	return &Index{
		buckets: make(map[Day]map[string]struct{}),
	}
}

// OnTaskChanged moves the task between day buckets. Either deadline may be
// nil; a no-op when both map to the same bucket.
func (ix *Index) OnTaskChanged(id string, oldDeadline, newDeadline *time.Time) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if oldDeadline != nil {
		ix.remove(DayOf(*oldDeadline), id)
	}
	if newDeadline != nil {
		ix.add(DayOf(*newDeadline), id)
	}
}

// TasksOnDate returns the ids due on the given day, sorted for determinism.
func (ix *Index) TasksOnDate(day Day) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bucket, ok := ix.buckets[day]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DatesWithTasks returns every day with at least one task, sorted ascending.
func (ix *Index) DatesWithTasks() []Day {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	days := make([]Day, 0, len(ix.buckets))
	for day := range ix.buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

func (ix *Index) add(day Day, id string) {
	bucket, ok := ix.buckets[day]
	if !ok {
		bucket = make(map[string]struct{})
		ix.buckets[day] = bucket
	}
	bucket[id] = struct{}{}
}

func (ix *Index) remove(day Day, id string) {
	bucket, ok := ix.buckets[day]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(ix.buckets, day)
	}
}

// Rebuild constructs an index from scratch out of the given tasks. Used to
// verify that incremental maintenance never drifts from the store content.
func Rebuild(tasks []domain.Task) *Index {
	ix := NewIndex()
	for _, t := range tasks {
		if t.Deadline != nil {
			ix.OnTaskChanged(t.ID, nil, t.Deadline)
		}
	}
	return ix
}

// Equal reports whether two indexes hold identical buckets.
func (ix *Index) Equal(other *Index) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	if len(ix.buckets) != len(other.buckets) {
		return false
	}
	for day, bucket := range ix.buckets {
		ob, ok := other.buckets[day]
		if !ok || len(ob) != len(bucket) {
			return false
		}
		for id := range bucket {
			if _, ok := ob[id]; !ok {
				return false
			}
		}
	}
	return true
}
