package services

import (
	"testing"
	"time"

	"freelance/internal/core"
)

func TestSchedulers(t *testing.T) {
	start := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency core.RecurringType
		want      time.Time
	}{
		{"weekly", core.RecurringWeekly, time.Date(2025, 6, 17, 15, 0, 0, 0, time.UTC)},
		{"biweekly", core.RecurringBiweekly, time.Date(2025, 6, 24, 15, 0, 0, 0, time.UTC)},
		{"monthly", core.RecurringMonthly, time.Date(2025, 7, 10, 15, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler, err := GetOccurrenceScheduler(tt.frequency)
			if err != nil {
				t.Fatalf("GetOccurrenceScheduler(%s): %v", tt.frequency, err)
			}
			got := scheduler.Next(start)
			if !got.Equal(tt.want) {
				t.Errorf("Next(%v) = %v, want %v", start, got, tt.want)
			}
		})
	}
}

func TestMonthlySchedulerClampsShortMonths(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{
			"jan 31 clamps to feb 28",
			time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC),
		},
		{
			"jan 31 clamps to feb 29 in leap year",
			time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 29, 10, 0, 0, 0, time.UTC),
		},
		{
			"mar 31 clamps to apr 30",
			time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 30, 10, 0, 0, 0, time.UTC),
		},
		{
			"dec rolls into next year",
			time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (MonthlyScheduler{}).Next(tt.start)
			if !got.Equal(tt.want) {
				t.Errorf("Next(%v) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestGetOccurrenceSchedulerUnknown(t *testing.T) {
	if _, err := GetOccurrenceScheduler("daily"); err == nil {
		t.Error("unknown frequency should error")
	}
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("future meeting is returned unchanged", func(t *testing.T) {
		m := core.Meeting{Date: now.AddDate(0, 0, 3), Recurring: true, RecurringType: core.RecurringWeekly}
		got, err := NextOccurrence(m, now)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(m.Date) {
			t.Errorf("got %v, want %v", got, m.Date)
		}
	})

	t.Run("non-recurring past meeting stays put", func(t *testing.T) {
		m := core.Meeting{Date: now.AddDate(0, 0, -3)}
		got, err := NextOccurrence(m, now)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(m.Date) {
			t.Errorf("got %v, want %v", got, m.Date)
		}
	})

	t.Run("weekly meeting rolls past now", func(t *testing.T) {
		// Three weeks back; the next occurrence after now is a week out
		// minus the day offset.
		m := core.Meeting{
			Date:          time.Date(2025, 5, 27, 15, 0, 0, 0, time.UTC),
			Recurring:     true,
			RecurringType: core.RecurringWeekly,
		}
		got, err := NextOccurrence(m, now)
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2025, 6, 17, 15, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("recurring without type errors", func(t *testing.T) {
		m := core.Meeting{Date: now.AddDate(0, 0, -3), Recurring: true}
		if _, err := NextOccurrence(m, now); err == nil {
			t.Error("want error for missing recurrence type")
		}
	})
}
