package derive

import (
	"testing"

	"freelance/internal/core"
)

func TestInsightsRules(t *testing.T) {
	clients := []core.Client{
		{ID: "c1", Name: "Acme", Source: "Upwork", CreatedAt: daysAgo(45)},
		{ID: "c2", Name: "Globex", Source: "Upwork", CreatedAt: daysAgo(50)},
		{ID: "c3", Name: "Initech", Source: "Referral", CreatedAt: daysAgo(5)},
	}
	invoices := []core.Invoice{
		{ID: "i1", ClientID: "c1", Amount: cents(120_050), Status: core.InvoiceUnpaid, DueDate: daysAgo(10), CreatedAt: daysAgo(20)},
		{ID: "i2", ClientID: "c3", Amount: cents(300_000), Status: core.InvoicePaid, DueDate: daysAgo(2), CreatedAt: daysAgo(4)},
	}
	s := snap(clients, invoices, nil, nil)

	got := Insights(s, Tasks(s))

	byTitle := make(map[string]Insight, len(got))
	for _, in := range got {
		byTitle[in.Title] = in
	}

	cases := []struct {
		title   string
		message string
	}{
		{"Client Follow-up Needed", "2 clients haven't been active in 30+ days. Consider reaching out to re-engage."},
		{"Overdue Invoices", "You have 1 overdue invoice totaling $1,200.50."},
		{"Monthly Revenue", "You've earned $3,000.00 this month from 1 paid invoice."},
		{"High Priority Tasks", "You have 1 high-priority task that need attention."},
		{"Top Client Source", "Upwork is your best performing platform with 2 clients. Consider focusing more efforts there."},
		{"Client Growth", "You've added 1 new client in the last 30 days. Great momentum!"},
	}
	for _, c := range cases {
		in, ok := byTitle[c.title]
		if !ok {
			t.Errorf("missing insight %q", c.title)
			continue
		}
		if in.Message != c.message {
			t.Errorf("%s message = %q, want %q", c.title, in.Message, c.message)
		}
	}
	if len(got) != len(cases) {
		t.Errorf("got %d insights, want %d", len(got), len(cases))
	}
}

func TestInsightsPriorityOrder(t *testing.T) {
	clients := []core.Client{
		{ID: "c1", Name: "Acme", Source: "Upwork", CreatedAt: daysAgo(45)},
		{ID: "c2", Name: "Globex", Source: "Upwork", CreatedAt: daysAgo(5)},
	}
	invoices := []core.Invoice{
		{ID: "i1", ClientID: "c1", Amount: cents(10_000), Status: core.InvoiceUnpaid, DueDate: daysAgo(1), CreatedAt: daysAgo(20)},
		{ID: "i2", ClientID: "c2", Amount: cents(50_000), Status: core.InvoicePaid, CreatedAt: daysAgo(3)},
	}
	s := snap(clients, invoices, nil, nil)

	got := Insights(s, Tasks(s))
	if len(got) == 0 {
		t.Fatal("no insights")
	}

	// Non-increasing priority, and equal priorities keep rule order.
	for i := 1; i < len(got); i++ {
		if got[i].Priority.Rank() > got[i-1].Priority.Rank() {
			t.Errorf("insight %d (%s) outranks its predecessor", i, got[i].Title)
		}
	}
	wantFirst := "Client Follow-up Needed"
	if got[0].Title != wantFirst {
		t.Errorf("first insight = %q, want %q", got[0].Title, wantFirst)
	}
}

func TestInsightsQuiet(t *testing.T) {
	// A single fresh client with nothing outstanding trips only the
	// growth rule.
	clients := []core.Client{
		{ID: "c1", Name: "Acme", Source: "Upwork", CreatedAt: daysAgo(2)},
	}
	s := snap(clients, nil, nil, nil)

	got := Insights(s, Tasks(s))
	if len(got) != 1 {
		t.Fatalf("got %d insights, want 1: %+v", len(got), got)
	}
	if got[0].Title != "Client Growth" {
		t.Errorf("insight = %q, want Client Growth", got[0].Title)
	}
}

func TestInsightsEmpty(t *testing.T) {
	if got := Insights(snap(nil, nil, nil, nil), nil); len(got) != 0 {
		t.Errorf("empty snapshot produced insights: %+v", got)
	}
}
