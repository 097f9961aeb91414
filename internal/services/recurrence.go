package services

import (
	"fmt"
	"time"

	"freelance/internal/core"
)

// OccurrenceScheduler is the strategy interface for advancing a
// recurring meeting. Each implementation encapsulates the step rule for
// one recurrence frequency.
type OccurrenceScheduler interface {
	// Next returns the occurrence that follows the given one.
	Next(occurrence time.Time) time.Time
}

// WeeklyScheduler advances a meeting by seven days.
type WeeklyScheduler struct{}

func (WeeklyScheduler) Next(occurrence time.Time) time.Time {
	return occurrence.AddDate(0, 0, 7)
}

// BiweeklyScheduler advances a meeting by fourteen days.
type BiweeklyScheduler struct{}

func (BiweeklyScheduler) Next(occurrence time.Time) time.Time {
	return occurrence.AddDate(0, 0, 14)
}

// MonthlyScheduler advances a meeting by one calendar month, clamping
// to the last day when the anchor day does not exist in the target
// month (Jan 31 -> Feb 28).
type MonthlyScheduler struct{}

func (MonthlyScheduler) Next(occurrence time.Time) time.Time {
	year, month, day := occurrence.Date()
	h, m, s := occurrence.Clock()

	// AddDate lets a 31st spill into the month after, so clamp to the
	// target month's last day instead.
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, occurrence.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month+1, day, h, m, s, occurrence.Nanosecond(), occurrence.Location())
}

// occurrenceStrategies maps recurrence types to their schedulers.
var occurrenceStrategies = map[core.RecurringType]OccurrenceScheduler{
	core.RecurringWeekly:   WeeklyScheduler{},
	core.RecurringBiweekly: BiweeklyScheduler{},
	core.RecurringMonthly:  MonthlyScheduler{},
}

// GetOccurrenceScheduler returns the scheduler for a recurrence type.
func GetOccurrenceScheduler(frequency core.RecurringType) (OccurrenceScheduler, error) {
	scheduler, ok := occurrenceStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown recurrence type: %s", frequency)
	}
	return scheduler, nil
}

// RegisterOccurrenceScheduler registers a scheduler for a new frequency
// type without touching the existing ones.
func RegisterOccurrenceScheduler(frequency core.RecurringType, scheduler OccurrenceScheduler) {
	occurrenceStrategies[frequency] = scheduler
}

// NextOccurrence rolls a recurring meeting forward to its first
// occurrence strictly after now. Non-recurring meetings return their
// scheduled date unchanged.
func NextOccurrence(m core.Meeting, now time.Time) (time.Time, error) {
	if !m.Recurring || m.Date.After(now) {
		return m.Date, nil
	}

	scheduler, err := GetOccurrenceScheduler(m.RecurringType)
	if err != nil {
		return time.Time{}, err
	}

	next := m.Date
	for !next.After(now) {
		next = scheduler.Next(next)
	}
	return next, nil
}
