package worker

import (
	"context"
	"testing"
	"time"

	"freelance/internal/amqp"
	"freelance/internal/core"
)

type fakeSource struct {
	clients  []core.Client
	invoices []core.Invoice
	meetings []core.Meeting
	projects []core.Project
	err      error
}

func (f fakeSource) ListClients(ctx context.Context) ([]core.Client, error) {
	return f.clients, f.err
}

func (f fakeSource) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	return f.invoices, f.err
}

func (f fakeSource) ListMeetings(ctx context.Context) ([]core.Meeting, error) {
	return f.meetings, f.err
}

func (f fakeSource) ListProjects(ctx context.Context) ([]core.Project, error) {
	return f.projects, f.err
}

func TestRemind(t *testing.T) {
	now := time.Now()
	src := fakeSource{
		clients: []core.Client{{ID: "c1", Name: "Acme", CreatedAt: now}},
		invoices: []core.Invoice{
			{ID: "i1", ClientID: "c1", Amount: core.Money{Cents: 5000}, DueDate: now.Add(-48 * time.Hour), Status: core.InvoiceUnpaid, CreatedAt: now.Add(-72 * time.Hour)},
		},
		meetings: []core.Meeting{
			{ID: "m1", ClientID: "c1", Date: now.Add(-8 * 24 * time.Hour), Recurring: true, RecurringType: core.RecurringWeekly},
		},
	}

	w := NewReminderWorker(src, time.Minute)
	if err := w.Remind(context.Background()); err != nil {
		t.Fatalf("Remind: %v", err)
	}
}

func TestRemindLoadFailure(t *testing.T) {
	w := NewReminderWorker(fakeSource{err: context.DeadlineExceeded}, time.Minute)
	if err := w.Remind(context.Background()); err == nil {
		t.Fatal("expected error when the snapshot cannot be loaded")
	}
}

func TestHandleChangeMessage(t *testing.T) {
	w := NewReminderWorker(fakeSource{}, time.Minute)
	msg := amqp.NewChangeMessage(amqp.EntityInvoice, "i1", amqp.OpUpdate)
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage: %v", err)
	}
}
