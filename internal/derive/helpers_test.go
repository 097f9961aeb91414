package derive

import (
	"time"

	"freelance/internal/core"
	"freelance/internal/snapshot"
)

// Fixed evaluation time for every test; calculators only ever look at
// Snapshot.TakenAt.
var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func snap(clients []core.Client, invoices []core.Invoice, meetings []core.Meeting, projects []core.Project) *snapshot.Snapshot {
	return snapshot.New(now, clients, invoices, meetings, projects)
}

func daysAgo(n int) time.Time  { return now.AddDate(0, 0, -n) }
func daysAhead(n int) time.Time { return now.AddDate(0, 0, n) }
