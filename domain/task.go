package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Priority represents the urgency bucket of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status represents the progress state of a task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ReminderOffset is the duration subtracted from the deadline to compute the
// reminder fire time. Only the discrete offsets below are accepted.
type ReminderOffset time.Duration

const (
	Offset5Minutes  = ReminderOffset(5 * time.Minute)
	Offset15Minutes = ReminderOffset(15 * time.Minute)
	Offset30Minutes = ReminderOffset(30 * time.Minute)
	Offset1Hour     = ReminderOffset(time.Hour)
	Offset1Day      = ReminderOffset(24 * time.Hour)
)

func (o ReminderOffset) Valid() bool {
	switch o {
	case Offset5Minutes, Offset15Minutes, Offset30Minutes, Offset1Hour, Offset1Day:
		return true
	}
	return false
}

func (o ReminderOffset) Duration() time.Duration {
	return time.Duration(o)
}

// Label returns the human-readable form used in CSV exports and notifications.
func (o ReminderOffset) Label() string {
	switch o {
	case Offset5Minutes:
		return "5 minutes before"
	case Offset15Minutes:
		return "15 minutes before"
	case Offset30Minutes:
		return "30 minutes before"
	case Offset1Hour:
		return "1 hour before"
	case Offset1Day:
		return "1 day before"
	}
	return time.Duration(o).String() + " before"
}

func (o ReminderOffset) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(o).String())
}

func (o *ReminderOffset) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid reminder offset %q: %w", raw, err)
	}
	*o = ReminderOffset(d)
	return nil
}

// Task represents a tracked activity with an optional deadline and reminder.
type Task struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Priority       Priority        `json:"priority"`
	Status         Status          `json:"status"`
	Deadline       *time.Time      `json:"deadline,omitempty"`
	ReminderOffset *ReminderOffset `json:"reminder_offset,omitempty"`
	ReminderFired  bool            `json:"reminder_fired"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Clone returns a copy that shares no pointers with the receiver.
func (t Task) Clone() Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	if t.ReminderOffset != nil {
		o := *t.ReminderOffset
		t.ReminderOffset = &o
	}
	return t
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsOverdue reports whether the deadline has passed without completion.
// It is a pure predicate over the task and the supplied clock reading.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.Deadline == nil || t.IsCompleted() {
		return false
	}
	return now.After(*t.Deadline)
}

// ReminderFireTime returns deadline minus offset, or nil when the task has
// no deadline or no reminder. A task with no deadline has no reminder
// regardless of its offset setting.
func (t *Task) ReminderFireTime() *time.Time {
	if t == nil || t.Deadline == nil || t.ReminderOffset == nil {
		return nil
	}
	fire := t.Deadline.Add(-t.ReminderOffset.Duration())
	return &fire
}

// Validate checks the field constraints shared by insert and update.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if !t.Priority.Valid() {
		return NewError(ErrCodeInvalid, fmt.Sprintf("unknown priority %q", t.Priority))
	}
	if !t.Status.Valid() {
		return NewError(ErrCodeInvalid, fmt.Sprintf("unknown status %q", t.Status))
	}
	if t.ReminderOffset != nil && !t.ReminderOffset.Valid() {
		return NewError(ErrCodeInvalid, fmt.Sprintf("unsupported reminder offset %s", t.ReminderOffset.Duration()))
	}
	return nil
}
