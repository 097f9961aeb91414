// Package snapshot materializes a point-in-time view of the four entity
// collections and normalizes it into the canonical form every derived-view
// calculator operates on.
package snapshot

import (
	"time"

	"freelance/internal/core"
)

// UnknownClientName labels dangling client references. A client may have
// been deleted between snapshots; calculations degrade to this label
// instead of failing.
const UnknownClientName = "Unknown client"

// Snapshot is an immutable set of Client/Invoice/Meeting/Project
// collections taken at a single instant. All derived views are pure
// functions of a Snapshot; TakenAt is the evaluation time for every
// "now"-relative rule so the same snapshot always yields the same output.
type Snapshot struct {
	TakenAt  time.Time
	Clients  []core.Client
	Invoices []core.Invoice
	Meetings []core.Meeting
	Projects []core.Project

	byClientID map[string]int
}

// New copies the input collections, applies the normalization rules, and
// builds the client index. The caller's slices are never mutated.
//
// Normalization (done once here so no calculator re-implements defaulting):
//   - client source and project platform default to core.DefaultSource
//   - missing createdAt, dueDate, and meeting date timestamps default
//     to takenAt
//   - progress is clamped to [0,100]
//   - negative monetary amounts are floored at 0
func New(takenAt time.Time, clients []core.Client, invoices []core.Invoice, meetings []core.Meeting, projects []core.Project) *Snapshot {
	s := &Snapshot{
		TakenAt:    takenAt,
		Clients:    make([]core.Client, len(clients)),
		Invoices:   make([]core.Invoice, len(invoices)),
		Meetings:   make([]core.Meeting, len(meetings)),
		Projects:   make([]core.Project, len(projects)),
		byClientID: make(map[string]int, len(clients)),
	}

	for i, c := range clients {
		if c.Source == "" {
			c.Source = core.DefaultSource
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = takenAt
		}
		if c.Tags == nil {
			c.Tags = []string{}
		}
		s.Clients[i] = c
		s.byClientID[c.ID] = i
	}

	for i, inv := range invoices {
		if inv.CreatedAt.IsZero() {
			inv.CreatedAt = takenAt
		}
		// A missing due date reads as "due now", never as overdue.
		if inv.DueDate.IsZero() {
			inv.DueDate = takenAt
		}
		if inv.Amount.Cents < 0 {
			inv.Amount.Cents = 0
		}
		s.Invoices[i] = inv
	}

	for i, m := range meetings {
		if m.Date.IsZero() {
			m.Date = takenAt
		}
		s.Meetings[i] = m
	}

	for i, p := range projects {
		if p.Platform == "" {
			p.Platform = core.DefaultSource
		}
		if p.Progress < 0 {
			p.Progress = 0
		}
		if p.Progress > 100 {
			p.Progress = 100
		}
		if p.Budget.Cents < 0 {
			p.Budget.Cents = 0
		}
		if p.AmountPaid.Cents < 0 {
			p.AmountPaid.Cents = 0
		}
		if p.Tags == nil {
			p.Tags = []string{}
		}
		s.Projects[i] = p
	}

	return s
}

// Client resolves a client id against the snapshot.
func (s *Snapshot) Client(id string) (core.Client, bool) {
	i, ok := s.byClientID[id]
	if !ok {
		return core.Client{}, false
	}
	return s.Clients[i], true
}

// ClientName resolves a client id to its display name, falling back to
// UnknownClientName for dangling references.
func (s *Snapshot) ClientName(id string) string {
	if c, ok := s.Client(id); ok {
		return c.Name
	}
	return UnknownClientName
}
