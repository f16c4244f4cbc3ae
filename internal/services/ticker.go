package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskpulse/backend/domain"
)

// DueChecker is the scheduler-facing side of the engine: it returns every
// reminder newly due at the given instant, each at most once.
type DueChecker interface {
	CheckDue(now time.Time) []domain.Task
}

// TickerConfig controls how often the due-check runs.
type TickerConfig struct {
	Interval time.Duration
}

// ReminderTicker drives the periodic due-check and hands due reminders to
// the notifier. All scheduler polling funnels through the engine's lock, so
// the tick never interleaves with store mutation.
type ReminderTicker struct {
	checker  DueChecker
	notifier Notifier
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      TickerConfig
}

func NewReminderTicker(checker DueChecker, notifier Notifier, logger *zap.Logger, cfg TickerConfig) *ReminderTicker {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rt := &ReminderTicker{
		checker:  checker,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = rt.cron.AddFunc(schedule, func() {
		rt.Tick(time.Now())
	})

	return rt
}

// Start launches the cron scheduler.
func (rt *ReminderTicker) Start() {
	if rt == nil || rt.cron == nil {
		return
	}
	rt.cron.Start()
	rt.logger.Info("reminder ticker started", zap.Duration("interval", rt.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (rt *ReminderTicker) Stop(ctx context.Context) {
	if rt == nil || rt.cron == nil {
		return
	}
	stopCtx := rt.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	rt.logger.Info("reminder ticker stopped")
}

// Tick runs one due-check and dispatches every due reminder. Exposed so the
// check can also be triggered on demand.
func (rt *ReminderTicker) Tick(now time.Time) {
	if rt == nil || rt.checker == nil {
		return
	}

	due := rt.checker.CheckDue(now)
	for _, task := range due {
		rt.logger.Debug("reminder due",
			zap.String("task_id", task.ID),
			zap.String("title", task.Title))
		if rt.notifier != nil {
			rt.notifier.Notify(task.ID, task.Title, reminderMessage(task))
		}
	}
}

func reminderMessage(task domain.Task) string {
	deadline := "no deadline"
	if task.Deadline != nil {
		deadline = task.Deadline.Local().Format("2006-01-02 15:04")
	}
	if task.Description == "" {
		return fmt.Sprintf("Deadline: %s", deadline)
	}
	return fmt.Sprintf("Deadline: %s\n\n%s", deadline, task.Description)
}
