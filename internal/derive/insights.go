package derive

import (
	"sort"
	"strconv"

	"freelance/internal/core"
	"freelance/internal/snapshot"
)

// InsightDisplayLimit is how many insights consumers show; the full
// ranked list is still returned so nothing is lost server-side.
const InsightDisplayLimit = 5

// Insight is one human-readable recommendation.
type Insight struct {
	Type     string   `json:"type"`
	Icon     string   `json:"icon"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Action   string   `json:"action"`
	Priority Priority `json:"priority"`
}

// Insights applies the fixed rule set over the snapshot and the derived
// task list. Rules are evaluated in a fixed order and each emits zero or
// one insight; the final list is sorted by priority, stable on rule
// order, so equal-priority insights keep their rule sequence.
func Insights(s *snapshot.Snapshot, tasks []Task) []Insight {
	var out []Insight

	// Dormant clients.
	dormant := 0
	for _, c := range s.Clients {
		if s.TakenAt.Sub(c.CreatedAt) > DormancyThreshold {
			dormant++
		}
	}
	if dormant > 0 {
		out = append(out, Insight{
			Type:  "warning",
			Icon:  "⚠️",
			Title: "Client Follow-up Needed",
			Message: strconv.Itoa(dormant) + " client" + plural(dormant) +
				" haven't been active in 30+ days. Consider reaching out to re-engage.",
			Action:   "View Inactive Clients",
			Priority: PriorityHigh,
		})
	}

	// Overdue invoices, with total overdue amount.
	overdue := 0
	var overdueCents int64
	for _, inv := range s.Invoices {
		if inv.Status != core.InvoicePaid && inv.DueDate.Before(s.TakenAt) {
			overdue++
			overdueCents += inv.Amount.Cents
		}
	}
	if overdue > 0 {
		out = append(out, Insight{
			Type:  "alert",
			Icon:  "🚨",
			Title: "Overdue Invoices",
			Message: "You have " + strconv.Itoa(overdue) + " overdue invoice" + plural(overdue) +
				" totaling " + core.FormatDollars(overdueCents) + ".",
			Action:   "Review Overdue",
			Priority: PriorityHigh,
		})
	}

	// Revenue earned this calendar month.
	paidCount := 0
	var paidCents int64
	for _, inv := range s.Invoices {
		if inv.Status != core.InvoicePaid {
			continue
		}
		if inv.CreatedAt.Year() == s.TakenAt.Year() && inv.CreatedAt.Month() == s.TakenAt.Month() {
			paidCount++
			paidCents += inv.Amount.Cents
		}
	}
	if paidCents > 0 {
		out = append(out, Insight{
			Type:  "success",
			Icon:  "💰",
			Title: "Monthly Revenue",
			Message: "You've earned " + core.FormatDollars(paidCents) + " this month from " +
				strconv.Itoa(paidCount) + " paid invoice" + plural(paidCount) + ".",
			Action:   "View Details",
			Priority: PriorityMedium,
		})
	}

	// High-priority tasks.
	high := 0
	for _, t := range tasks {
		if t.Priority == PriorityHigh {
			high++
		}
	}
	if high > 0 {
		out = append(out, Insight{
			Type:  "info",
			Icon:  "📋",
			Title: "High Priority Tasks",
			Message: "You have " + strconv.Itoa(high) + " high-priority task" + plural(high) +
				" that need attention.",
			Action:   "View Tasks",
			Priority: PriorityHigh,
		})
	}

	// Best-represented client source, when it has more than one client.
	if source, count := topSource(s); count > 1 {
		out = append(out, Insight{
			Type:  "info",
			Icon:  "📊",
			Title: "Top Client Source",
			Message: source + " is your best performing platform with " + strconv.Itoa(count) +
				" client" + plural(count) + ". Consider focusing more efforts there.",
			Action:   "View Analytics",
			Priority: PriorityLow,
		})
	}

	// Clients added in the last 30 days.
	recent := 0
	for _, c := range s.Clients {
		if s.TakenAt.Sub(c.CreatedAt) < DormancyThreshold {
			recent++
		}
	}
	if recent > 0 {
		out = append(out, Insight{
			Type:  "success",
			Icon:  "📈",
			Title: "Client Growth",
			Message: "You've added " + strconv.Itoa(recent) + " new client" + plural(recent) +
				" in the last 30 days. Great momentum!",
			Action:   "View Growth",
			Priority: PriorityMedium,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() > out[j].Priority.Rank()
	})
	return out
}

// topSource returns the most common client source; ties keep the source
// seen first in snapshot order.
func topSource(s *snapshot.Snapshot) (string, int) {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, c := range s.Clients {
		counts[c.Source]++
		if counts[c.Source] > bestCount {
			best, bestCount = c.Source, counts[c.Source]
		}
	}
	return best, bestCount
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
