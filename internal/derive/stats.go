// Package derive computes the read-only projections shown on the
// dashboard and project-analytics screens: headline stats, the merged
// activity feed, follow-up tasks, financial and platform rollups,
// heuristic insights, project analytics, and kanban lane assignment.
//
// Every function here is a pure function of a snapshot: no I/O, no
// hidden state, no randomness. "Now" is always Snapshot.TakenAt.
package derive

import (
	"freelance/internal/core"
	"freelance/internal/snapshot"
)

// ongoingTag marks clients counted as active engagements.
const ongoingTag = "ongoing"

// Stats are the headline dashboard counters.
type Stats struct {
	TotalClients     int `json:"totalClients"`
	ActiveProjects   int `json:"activeProjects"`
	PendingInvoices  int `json:"pendingInvoices"`
	UpcomingMeetings int `json:"upcomingMeetings"`
}

// Summarize counts the raw collections into the headline KPIs. Absent
// fields count as non-matching; this can never fail.
func Summarize(s *snapshot.Snapshot) Stats {
	st := Stats{TotalClients: len(s.Clients)}
	for _, c := range s.Clients {
		if c.HasTag(ongoingTag) {
			st.ActiveProjects++
		}
	}
	for _, inv := range s.Invoices {
		if inv.Status == core.InvoiceUnpaid {
			st.PendingInvoices++
		}
	}
	for _, m := range s.Meetings {
		if m.Date.After(s.TakenAt) {
			st.UpcomingMeetings++
		}
	}
	return st
}
