package derive

import (
	"sort"
	"time"

	"freelance/internal/core"
	"freelance/internal/snapshot"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   3,
	PriorityMedium: 2,
	PriorityLow:    1,
}

// Rank returns the numeric ordering weight of the priority, higher first.
func (p Priority) Rank() int { return priorityRank[p] }

// DormancyThreshold is the inactivity cutoff after which a client counts
// as dormant, shared by task generation, insights, and platform stats.
const DormancyThreshold = 30 * 24 * time.Hour

const (
	meetingPrepWindow  = 24 * time.Hour
	dormantTaskCap     = 3
	dormantFollowUpDue = 7 * 24 * time.Hour
)

// Task is an actionable follow-up item derived from the snapshot.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"dueDate"`
	Type        string    `json:"type"`
	Action      string    `json:"action"`
}

// Tasks derives the follow-up list: overdue-invoice chasers, meeting
// preparation within the next 24 hours, and dormant-client outreach.
// The result is ordered priority-major; within equal priority the
// insertion order of the three families (overdue, meetings, dormant) is
// kept. That ordering is a contract, not an accident: it decides which
// items users see first.
func Tasks(s *snapshot.Snapshot) []Task {
	var tasks []Task

	for _, inv := range s.Invoices {
		if inv.Status == core.InvoicePaid || !inv.DueDate.Before(s.TakenAt) {
			continue
		}
		tasks = append(tasks, Task{
			ID:    "overdue-" + inv.ID,
			Title: "Follow up on overdue invoice",
			Description: "Invoice #" + shortID(inv.ID) + " for " + s.ClientName(inv.ClientID) +
				" - " + core.FormatDollars(inv.Amount.Cents),
			Priority: PriorityHigh,
			DueDate:  inv.DueDate,
			Type:     "invoice",
			Action:   "follow-up",
		})
	}

	for _, m := range s.Meetings {
		until := m.Date.Sub(s.TakenAt)
		if until <= 0 || until > meetingPrepWindow {
			continue
		}
		tasks = append(tasks, Task{
			ID:    "meeting-" + m.ID,
			Title: "Prepare for meeting",
			Description: "Meeting with " + s.ClientName(m.ClientID) +
				" at " + m.Date.Format("3:04 PM"),
			Priority: PriorityMedium,
			DueDate:  m.Date,
			Type:     "meeting",
			Action:   "prepare",
		})
	}

	dormant := 0
	for _, c := range s.Clients {
		if dormant >= dormantTaskCap {
			break
		}
		if s.TakenAt.Sub(c.CreatedAt) <= DormancyThreshold {
			continue
		}
		dormant++
		tasks = append(tasks, Task{
			ID:          "followup-" + c.ID,
			Title:       "Follow up with inactive client",
			Description: "Reach out to " + c.Name + " - no activity in 30+ days",
			Priority:    PriorityLow,
			DueDate:     s.TakenAt.Add(dormantFollowUpDue),
			Type:        "client",
			Action:      "follow-up",
		})
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
	})
	return tasks
}

// FilterTasks drops tasks whose ids appear in done. Client-side task
// completion is modeled as this explicit exclusion set applied over the
// generator's output; the generator itself is never mutated.
func FilterTasks(tasks []Task, done map[string]bool) []Task {
	if len(done) == 0 {
		return tasks
	}
	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !done[t.ID] {
			kept = append(kept, t)
		}
	}
	return kept
}

// shortID returns the last 8 characters of an id for compact display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
