package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier receives one call per due reminder. Delivery failures are not the
// engine's concern.
type Notifier interface {
	Notify(taskID, title, message string)
}

// Notification is a dispatched reminder kept for the recent-activity view.
type Notification struct {
	TaskID  string    `json:"task_id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// LogNotifier renders reminders as structured log entries.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(taskID, title, message string) {
	n.logger.Info("task reminder",
		zap.String("task_id", taskID),
		zap.String("title", title),
		zap.String("message", message))
}

// Recorder wraps another notifier and keeps the most recent notifications
// in a bounded ring so the API can list them.
type Recorder struct {
	mu    sync.Mutex
	next  Notifier
	ring  []Notification
	limit int
	now   func() time.Time
}

func NewRecorder(next Notifier, limit int) *Recorder {
	if limit <= 0 {
		limit = 50
	}
	return &Recorder{
		next:  next,
		limit: limit,
		now:   time.Now,
	}
}

func (r *Recorder) Notify(taskID, title, message string) {
	r.mu.Lock()
	r.ring = append(r.ring, Notification{
		TaskID:  taskID,
		Title:   title,
		Message: message,
		At:      r.now(),
	})
	if len(r.ring) > r.limit {
		r.ring = r.ring[len(r.ring)-r.limit:]
	}
	r.mu.Unlock()

	if r.next != nil {
		r.next.Notify(taskID, title, message)
	}
}

// Recent returns the recorded notifications, newest last.
func (r *Recorder) Recent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.ring))
	copy(out, r.ring)
	return out
}
