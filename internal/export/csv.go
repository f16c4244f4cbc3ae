// Package export renders the task list into interchange formats.
package export

import (
	"encoding/csv"
	"io"

	"github.com/taskpulse/backend/domain"
)

var csvHeader = []string{"Title", "Description", "Priority", "Status", "Deadline", "Reminder"}

const deadlineLayout = "2006-01-02 15:04"

// WriteCSV writes the tasks as CSV, one row per task in the given order.
func WriteCSV(w io.Writer, tasks []domain.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		deadline := ""
		if t.Deadline != nil {
			deadline = t.Deadline.Local().Format(deadlineLayout)
		}
		reminder := "No Reminder"
		if t.ReminderOffset != nil {
			reminder = t.ReminderOffset.Label()
		}
		row := []string{
			t.Title,
			t.Description,
			string(t.Priority),
			string(t.Status),
			deadline,
			reminder,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
