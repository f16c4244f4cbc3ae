package transport

// TaskRequest is the create/update payload. Deadline is RFC3339; an empty
// string clears it. ReminderOffset takes Go duration syntax ("15m", "1h",
// "24h"); an empty string means no reminder.
type TaskRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	Deadline       string `json:"deadline"`
	ReminderOffset string `json:"reminder_offset"`
}
