package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskValidate(t *testing.T) {
	valid := Task{Title: "write report", Priority: PriorityHigh, Status: StatusNotStarted}
	assert.NoError(t, valid.Validate())

	empty := valid
	empty.Title = ""
	assert.ErrorIs(t, empty.Validate(), ErrEmptyTitle)

	badPriority := valid
	badPriority.Priority = "urgent"
	assert.True(t, IsDomainError(badPriority.Validate(), ErrCodeInvalid))

	badStatus := valid
	badStatus.Status = "done"
	assert.True(t, IsDomainError(badStatus.Validate(), ErrCodeInvalid))

	badOffset := ReminderOffset(7 * time.Minute)
	withBadOffset := valid
	withBadOffset.ReminderOffset = &badOffset
	assert.True(t, IsDomainError(withBadOffset.Validate(), ErrCodeInvalid))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.Local)
	deadline := now.Add(-time.Minute)

	task := Task{Title: "t", Priority: PriorityLow, Status: StatusInProgress, Deadline: &deadline}
	assert.True(t, task.IsOverdue(now))

	task.Status = StatusCompleted
	assert.False(t, task.IsOverdue(now), "completing flips overdue immediately")

	task.Status = StatusInProgress
	task.Deadline = nil
	assert.False(t, task.IsOverdue(now), "no deadline, never overdue")

	future := now.Add(time.Hour)
	task.Deadline = &future
	assert.False(t, task.IsOverdue(now))
}

func TestReminderFireTime(t *testing.T) {
	deadline := time.Date(2024, 1, 10, 10, 0, 0, 0, time.Local)
	offset := Offset15Minutes

	task := Task{Deadline: &deadline, ReminderOffset: &offset}
	fire := task.ReminderFireTime()
	assert.NotNil(t, fire)
	assert.Equal(t, deadline.Add(-15*time.Minute), *fire)
	assert.False(t, fire.After(deadline))

	noDeadline := Task{ReminderOffset: &offset}
	assert.Nil(t, noDeadline.ReminderFireTime(), "offset without deadline means no reminder")

	noOffset := Task{Deadline: &deadline}
	assert.Nil(t, noOffset.ReminderFireTime())
}

func TestReminderOffsetJSON(t *testing.T) {
	offset := Offset1Hour
	data, err := json.Marshal(offset)
	assert.NoError(t, err)
	assert.Equal(t, `"1h0m0s"`, string(data))

	var parsed ReminderOffset
	assert.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, offset, parsed)

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &parsed))
}

func TestCloneSharesNothing(t *testing.T) {
	deadline := time.Date(2024, 1, 10, 10, 0, 0, 0, time.Local)
	offset := Offset5Minutes
	task := Task{Title: "t", Deadline: &deadline, ReminderOffset: &offset}

	clone := task.Clone()
	*clone.Deadline = clone.Deadline.Add(time.Hour)
	*clone.ReminderOffset = Offset1Day

	assert.Equal(t, deadline, *task.Deadline)
	assert.Equal(t, Offset5Minutes, *task.ReminderOffset)
}
