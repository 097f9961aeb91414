package derive

import (
	"sort"
	"time"

	"freelance/internal/core"
	"freelance/internal/snapshot"
)

// ClientRevenue is one row of the paid-revenue-by-client breakdown.
type ClientRevenue struct {
	Name         string `json:"name"`
	RevenueCents int64  `json:"revenueCents"`
	Invoices     int    `json:"invoices"`
}

// PlatformRevenue is one row of the paid-revenue-by-platform breakdown.
type PlatformRevenue struct {
	Platform     string `json:"platform"`
	RevenueCents int64  `json:"revenueCents"`
}

// Financial is the dashboard money rollup.
type Financial struct {
	MonthlyIncomeCents    int64             `json:"monthlyIncomeCents"`
	PendingPaymentsCents  int64             `json:"pendingPaymentsCents"`
	RecurringRevenueCents int64             `json:"recurringRevenueCents"`
	RevenueByClient       []ClientRevenue   `json:"revenueByClient"`
	RevenueByPlatform     []PlatformRevenue `json:"revenueByPlatform"`
}

// FinancialRollup computes monthly income, pending payments, and the
// paid-revenue breakdowns by client and by acquisition platform.
//
// RecurringRevenueCents is always 0: there is no subscription model in
// the data. Documented limitation, not a bug.
func FinancialRollup(s *snapshot.Snapshot) Financial {
	monthStart := firstOfMonth(s.TakenAt)

	var f Financial
	type paidAgg struct {
		cents int64
		count int
	}
	paidByClient := make(map[string]paidAgg)

	for _, inv := range s.Invoices {
		switch inv.Status {
		case core.InvoicePaid:
			if !inv.CreatedAt.Before(monthStart) {
				f.MonthlyIncomeCents += inv.Amount.Cents
			}
			agg := paidByClient[inv.ClientID]
			agg.cents += inv.Amount.Cents
			agg.count++
			paidByClient[inv.ClientID] = agg
		case core.InvoiceUnpaid:
			f.PendingPaymentsCents += inv.Amount.Cents
		}
	}

	// By client: snapshot order, zero-revenue clients dropped, then
	// sorted descending by revenue (stable).
	for _, c := range s.Clients {
		agg := paidByClient[c.ID]
		if agg.cents <= 0 {
			continue
		}
		f.RevenueByClient = append(f.RevenueByClient, ClientRevenue{
			Name:         c.Name,
			RevenueCents: agg.cents,
			Invoices:     agg.count,
		})
	}
	sort.SliceStable(f.RevenueByClient, func(i, j int) bool {
		return f.RevenueByClient[i].RevenueCents > f.RevenueByClient[j].RevenueCents
	})

	// By platform: insertion order of first appearance, not sorted.
	platformIdx := make(map[string]int)
	for _, c := range s.Clients {
		agg := paidByClient[c.ID]
		i, seen := platformIdx[c.Source]
		if !seen {
			platformIdx[c.Source] = len(f.RevenueByPlatform)
			f.RevenueByPlatform = append(f.RevenueByPlatform, PlatformRevenue{Platform: c.Source})
			i = platformIdx[c.Source]
		}
		f.RevenueByPlatform[i].RevenueCents += agg.cents
	}

	return f
}

// firstOfMonth truncates t to the first instant of its calendar month.
func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
