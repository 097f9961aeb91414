// Package worker runs the background reminder loop: it rebuilds the
// data snapshot whenever entities change or the interval elapses, and
// surfaces the derived task list as structured log reminders.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"freelance/internal/amqp"
	"freelance/internal/derive"
	"freelance/internal/services"
	"freelance/internal/snapshot"
)

// ReminderWorker recomputes suggested tasks from a fresh snapshot and
// logs the ones that need attention.
type ReminderWorker struct {
	loader   *snapshot.Loader
	interval time.Duration
}

func NewReminderWorker(src snapshot.Source, interval time.Duration) *ReminderWorker {
	return &ReminderWorker{
		loader:   snapshot.NewLoader(src),
		interval: interval,
	}
}

// HandleChangeMessage reacts to one entity change by recomputing
// reminders. The message only tells us something moved; the snapshot
// reload picks up whatever the change was.
func (w *ReminderWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"entity", msg.Entity,
		"id", msg.ID,
		"op", msg.Op)

	return w.Remind(ctx)
}

// Run ticks on the configured interval until the context is cancelled.
func (w *ReminderWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Reminder worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Reminder worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Remind(ctx); err != nil {
				slog.ErrorContext(ctx, "Reminder pass failed", "error", err)
			}
		}
	}
}

// Remind loads a fresh snapshot, derives the task list, and logs every
// high-priority task plus the next occurrence of each recurring meeting.
func (w *ReminderWorker) Remind(ctx context.Context) error {
	snap, err := w.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	tasks := derive.Tasks(snap)

	high := 0
	for _, task := range tasks {
		if task.Priority != derive.PriorityHigh {
			continue
		}
		high++
		slog.InfoContext(ctx, "Reminder",
			"task_id", task.ID,
			"type", task.Type,
			"title", task.Title,
			"description", task.Description,
			"due", task.DueDate)
	}

	for _, m := range snap.Meetings {
		if !m.Recurring {
			continue
		}
		next, err := services.NextOccurrence(m, snap.TakenAt)
		if err != nil {
			slog.WarnContext(ctx, "Cannot schedule recurring meeting",
				"id", m.ID, "error", err)
			continue
		}
		if next.After(m.Date) {
			slog.InfoContext(ctx, "Recurring meeting rolls forward",
				"id", m.ID,
				"client", snap.ClientName(m.ClientID),
				"next", next)
		}
	}

	slog.InfoContext(ctx, "Reminder pass complete",
		"tasks", len(tasks),
		"high_priority", high)

	return nil
}
