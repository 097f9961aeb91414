package derive

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"freelance/internal/core"
)

func TestTasksOverdueInvoices(t *testing.T) {
	clients := []core.Client{{ID: "c1", Name: "Acme", CreatedAt: daysAgo(1)}}
	invoices := []core.Invoice{
		{ID: "inv-12345678", ClientID: "c1", Amount: core.Money{Cents: 10000}, Status: core.InvoiceUnpaid, DueDate: daysAgo(1), CreatedAt: daysAgo(10)},
		{ID: "i2", ClientID: "c1", Amount: core.Money{Cents: 5000}, Status: core.InvoicePaid, DueDate: daysAgo(1), CreatedAt: daysAgo(10)},
		{ID: "i3", ClientID: "c1", Amount: core.Money{Cents: 5000}, Status: core.InvoiceUnpaid, DueDate: daysAhead(1), CreatedAt: daysAgo(10)},
	}

	tasks := Tasks(snap(clients, invoices, nil, nil))
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1 (paid and not-yet-due produce none)", len(tasks))
	}
	task := tasks[0]
	if task.Priority != PriorityHigh {
		t.Errorf("priority = %s, want high", task.Priority)
	}
	if task.ID != "overdue-inv-12345678" {
		t.Errorf("id = %s", task.ID)
	}
	// Last 8 chars of the invoice id, client name, amount.
	if task.Description != "Invoice #12345678 for Acme - $100.00" {
		t.Errorf("description = %q", task.Description)
	}
	if !task.DueDate.Equal(daysAgo(1)) {
		t.Errorf("due date = %v", task.DueDate)
	}
}

func TestTasksMissingDueDateNotOverdue(t *testing.T) {
	// An unpaid invoice without a due date reads as due now, so it must
	// not generate an overdue chaser.
	invoices := []core.Invoice{
		{ID: "i1", ClientID: "c1", Amount: core.Money{Cents: 1000}, Status: core.InvoiceUnpaid, CreatedAt: daysAgo(10)},
	}

	if tasks := Tasks(snap(nil, invoices, nil, nil)); len(tasks) != 0 {
		t.Fatalf("tasks = %v, want none", tasks)
	}
}

func TestTasksMeetingPreparation(t *testing.T) {
	meetings := []core.Meeting{
		{ID: "m1", ClientID: "ghost", Date: now.Add(2 * time.Hour)}, // in 2h
		{ID: "m2", ClientID: "ghost", Date: daysAhead(2)},               // beyond 24h
		{ID: "m3", ClientID: "ghost", Date: daysAgo(1)},                 // past
	}

	tasks := Tasks(snap(nil, nil, meetings, nil))
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].ID != "meeting-m1" || tasks[0].Priority != PriorityMedium {
		t.Errorf("task = %+v", tasks[0])
	}
	if !strings.Contains(tasks[0].Description, "Unknown client") {
		t.Errorf("description = %q, want unknown-client fallback", tasks[0].Description)
	}
}

func TestTasksDormantClients(t *testing.T) {
	// Five dormant clients; only the first three produce tasks.
	var clients []core.Client
	for i := 0; i < 5; i++ {
		clients = append(clients, core.Client{
			ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Client %d", i), CreatedAt: daysAgo(40 + i),
		})
	}
	clients = append(clients, core.Client{ID: "fresh", Name: "Fresh", CreatedAt: daysAgo(5)})

	tasks := Tasks(snap(clients, nil, nil, nil))
	if len(tasks) != 3 {
		t.Fatalf("tasks = %d, want 3 (capped)", len(tasks))
	}
	for i, task := range tasks {
		if task.Priority != PriorityLow {
			t.Errorf("priority = %s, want low", task.Priority)
		}
		if want := fmt.Sprintf("followup-c%d", i); task.ID != want {
			t.Errorf("task[%d].ID = %s, want %s", i, task.ID, want)
		}
		if !task.DueDate.Equal(now.Add(dormantFollowUpDue)) {
			t.Errorf("synthetic due date = %v, want now+7d", task.DueDate)
		}
	}
}

func TestTasksPriorityPartitionAndFamilyOrder(t *testing.T) {
	clients := []core.Client{
		{ID: "c1", Name: "Dormant", CreatedAt: daysAgo(45)},
		{ID: "c2", Name: "Active", CreatedAt: daysAgo(3)},
	}
	invoices := []core.Invoice{
		{ID: "i1", ClientID: "c1", Amount: core.Money{Cents: 100}, Status: core.InvoiceUnpaid, DueDate: daysAgo(2), CreatedAt: daysAgo(20)},
		{ID: "i2", ClientID: "c2", Amount: core.Money{Cents: 200}, Status: core.InvoiceUnpaid, DueDate: daysAgo(1), CreatedAt: daysAgo(20)},
	}
	meetings := []core.Meeting{
		{ID: "m1", ClientID: "c1", Date: now.Add(3 * time.Hour)},
	}

	tasks := Tasks(snap(clients, invoices, meetings, nil))

	// high block entirely precedes medium precedes low...
	lastRank := 4
	for i, task := range tasks {
		r := task.Priority.Rank()
		if r > lastRank {
			t.Fatalf("priority increases at index %d", i)
		}
		lastRank = r
	}
	// ...and within equal priority, family-then-natural order holds.
	wantIDs := []string{"overdue-i1", "overdue-i2", "meeting-m1", "followup-c1"}
	if len(tasks) != len(wantIDs) {
		t.Fatalf("tasks = %d, want %d", len(tasks), len(wantIDs))
	}
	for i, id := range wantIDs {
		if tasks[i].ID != id {
			t.Errorf("tasks[%d].ID = %s, want %s", i, tasks[i].ID, id)
		}
	}
}

func TestFilterTasks(t *testing.T) {
	tasks := []Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got := FilterTasks(tasks, map[string]bool{"b": true})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("FilterTasks = %+v", got)
	}

	if got := FilterTasks(tasks, nil); len(got) != 3 {
		t.Errorf("nil exclusion set should keep everything")
	}
}

func TestDormantScenario(t *testing.T) {
	// A 40-day-old client with no other data: exactly one low-priority
	// dormant task due in 7 days.
	s := snap([]core.Client{{ID: "c1", Name: "Acme", CreatedAt: daysAgo(40)}}, nil, nil, nil)

	tasks := Tasks(s)
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Priority != PriorityLow || !tasks[0].DueDate.Equal(now.AddDate(0, 0, 7)) {
		t.Errorf("task = %+v", tasks[0])
	}

	insights := Insights(s, tasks)
	found := false
	for _, in := range insights {
		if in.Type == "warning" && strings.Contains(in.Message, "1 client haven't") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning insight citing 1 client, got %+v", insights)
	}
}
