package snapshot

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"freelance/internal/core"
)

// Source is the port the data layer implements: four independent reads,
// each of which may fail on its own (network, auth, storage).
type Source interface {
	ListClients(ctx context.Context) ([]core.Client, error)
	ListInvoices(ctx context.Context) ([]core.Invoice, error)
	ListMeetings(ctx context.Context) ([]core.Meeting, error)
	ListProjects(ctx context.Context) ([]core.Project, error)
}

// Loader fetches all four collections concurrently and joins them into a
// normalized Snapshot.
type Loader struct {
	src Source
	now func() time.Time
}

func NewLoader(src Source) *Loader {
	return &Loader{src: src, now: time.Now}
}

// NewLoaderWithClock is used by tests that need a fixed evaluation time.
func NewLoaderWithClock(src Source, now func() time.Time) *Loader {
	return &Loader{src: src, now: now}
}

// Load issues the four reads concurrently. Every read is attempted even
// when another one fails, but a Snapshot is only produced when all four
// succeed: aggregation never runs on partial data. The first error is
// returned to the caller, which should keep any previously displayed
// derived views instead of recomputing from an incomplete snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	takenAt := l.now()

	var (
		clients  []core.Client
		invoices []core.Invoice
		meetings []core.Meeting
		projects []core.Project
	)

	// Plain Group rather than WithContext: a failed read must not cancel
	// the sibling reads mid-flight.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if clients, err = l.src.ListClients(ctx); err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if invoices, err = l.src.ListInvoices(ctx); err != nil {
			return fmt.Errorf("list invoices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if meetings, err = l.src.ListMeetings(ctx); err != nil {
			return fmt.Errorf("list meetings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if projects, err = l.src.ListProjects(ctx); err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	return New(takenAt, clients, invoices, meetings, projects), nil
}
