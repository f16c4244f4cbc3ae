package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/backend/domain"
)

func TestWriteCSV(t *testing.T) {
	deadline := time.Date(2024, 1, 10, 10, 0, 0, 0, time.Local)
	offset := domain.Offset15Minutes

	tasks := []domain.Task{
		{Title: "buy milk", Description: "2 liters", Priority: domain.PriorityLow, Status: domain.StatusNotStarted},
		{Title: "report", Priority: domain.PriorityHigh, Status: domain.StatusInProgress,
			Deadline: &deadline, ReminderOffset: &offset},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tasks))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Title", "Description", "Priority", "Status", "Deadline", "Reminder"}, rows[0])
	assert.Equal(t, []string{"buy milk", "2 liters", "low", "not_started", "", "No Reminder"}, rows[1])
	assert.Equal(t, []string{"report", "", "high", "in_progress", "2024-01-10 10:00", "15 minutes before"}, rows[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
