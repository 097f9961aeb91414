package derive

import (
	"sort"
	"time"

	"freelance/internal/core"
	"freelance/internal/snapshot"
)

// Per-source prefix lengths and the overall feed cap. Each source is
// pre-limited to a small prefix in collection order before the global
// sort, which bounds cost without a full sort of all activity ever.
const (
	activityClientPrefix  = 5
	activityInvoicePrefix = 5
	activityMeetingPrefix = 3
	activityFeedLimit     = 10
)

// Activity is one entry of the merged cross-entity feed.
type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
}

// RecentActivity merges client, invoice, and meeting events into one
// reverse-chronological feed of at most ten entries. Ties on date keep
// the merge order client -> invoice -> meeting (stable sort).
func RecentActivity(s *snapshot.Snapshot) []Activity {
	feed := make([]Activity, 0, activityClientPrefix+activityInvoicePrefix+activityMeetingPrefix)

	for _, c := range s.Clients[:min(activityClientPrefix, len(s.Clients))] {
		feed = append(feed, Activity{
			ID:          "client-" + c.ID,
			Type:        "client",
			Title:       "New client added: " + c.Name,
			Description: "Client from " + c.Source + " source",
			Date:        c.CreatedAt,
			Icon:        "👤",
			Color:       "blue",
		})
	}

	for _, inv := range s.Invoices[:min(activityInvoicePrefix, len(s.Invoices))] {
		a := Activity{
			ID:          "invoice-" + inv.ID,
			Type:        "invoice",
			Description: "For " + s.ClientName(inv.ClientID),
			Date:        inv.CreatedAt,
		}
		if inv.Status == core.InvoicePaid {
			a.Title = "Invoice paid: " + core.FormatDollars(inv.Amount.Cents)
			a.Icon = "💰"
			a.Color = "green"
		} else {
			a.Title = "Invoice created: " + core.FormatDollars(inv.Amount.Cents)
			a.Icon = "📄"
			a.Color = "orange"
		}
		feed = append(feed, a)
	}

	for _, m := range s.Meetings[:min(activityMeetingPrefix, len(s.Meetings))] {
		notes := m.Notes
		if notes == "" {
			notes = "No notes"
		}
		feed = append(feed, Activity{
			ID:          "meeting-" + m.ID,
			Type:        "meeting",
			Title:       "Meeting scheduled with " + s.ClientName(m.ClientID),
			Description: notes,
			Date:        m.Date,
			Icon:        "📅",
			Color:       "purple",
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})

	if len(feed) > activityFeedLimit {
		feed = feed[:activityFeedLimit]
	}
	return feed
}
