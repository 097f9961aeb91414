package derive

import (
	"sort"
	"time"

	"freelance/internal/core"
	"freelance/internal/snapshot"
)

const leaderboardLimit = 5

// LeaderboardEntry is one row of the per-platform or per-client project
// rollup: project count plus paid revenue.
type LeaderboardEntry struct {
	Name         string `json:"name"`
	Projects     int    `json:"projects"`
	RevenueCents int64  `json:"revenueCents"`
}

// MonthRevenue is one point of the paid-revenue trend, keyed by the
// calendar month a project completed in.
type MonthRevenue struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	Label        string     `json:"label"`
	RevenueCents int64      `json:"revenueCents"`
}

// ProjectAnalytics is the rollup specialized to the Project collection.
type ProjectAnalytics struct {
	TotalProjects       int   `json:"totalProjects"`
	ActiveProjects      int   `json:"activeProjects"`
	CompletedProjects   int   `json:"completedProjects"`
	OverdueProjects     int   `json:"overdueProjects"`
	PaidRevenueCents    int64 `json:"paidRevenueCents"`
	PendingRevenueCents int64 `json:"pendingRevenueCents"`
	AvgDurationDays     int   `json:"avgDurationDays"`

	TopClients     []LeaderboardEntry `json:"topClients"`
	TopPlatforms   []LeaderboardEntry `json:"topPlatforms"`
	MonthlyRevenue []MonthRevenue     `json:"monthlyRevenue"`
}

// AnalyzeProjects computes the project analytics rollup: status and
// overdue counts, revenue split by payment status, platform and client
// leaderboards, average completed-project duration, and the monthly
// paid-revenue trend.
func AnalyzeProjects(s *snapshot.Snapshot) ProjectAnalytics {
	a := ProjectAnalytics{TotalProjects: len(s.Projects)}

	type agg struct {
		count   int
		revenue int64
	}
	byPlatform := make(map[string]*agg)
	byClient := make(map[string]*agg)
	var platformOrder, clientOrder []string

	type monthKey struct {
		year  int
		month time.Month
	}
	monthly := make(map[monthKey]int64)

	var durationSum time.Duration
	durationCount := 0

	for _, p := range s.Projects {
		switch p.Status {
		case core.ProjectActive:
			a.ActiveProjects++
		case core.ProjectCompleted:
			a.CompletedProjects++
		}
		if p.Status != core.ProjectCompleted && !p.Deadline.IsZero() && p.Deadline.Before(s.TakenAt) {
			a.OverdueProjects++
		}

		paid := p.PaymentStatus == core.PaymentPaid
		switch p.PaymentStatus {
		case core.PaymentPaid:
			a.PaidRevenueCents += p.Budget.Cents
		case core.PaymentPending:
			a.PendingRevenueCents += p.Budget.Cents
		}

		pa, ok := byPlatform[p.Platform]
		if !ok {
			pa = &agg{}
			byPlatform[p.Platform] = pa
			platformOrder = append(platformOrder, p.Platform)
		}
		pa.count++
		if paid {
			pa.revenue += p.Budget.Cents
		}

		// The client leaderboard is keyed by resolved name so deleted
		// clients collapse into one labeled bucket.
		name := s.ClientName(p.ClientID)
		ca, ok := byClient[name]
		if !ok {
			ca = &agg{}
			byClient[name] = ca
			clientOrder = append(clientOrder, name)
		}
		ca.count++
		if paid {
			ca.revenue += p.Budget.Cents
		}

		if p.Status == core.ProjectCompleted && !p.StartDate.IsZero() && !p.CompletedDate.IsZero() {
			durationSum += p.CompletedDate.Sub(p.StartDate)
			durationCount++
		}

		if paid && !p.CompletedDate.IsZero() {
			k := monthKey{p.CompletedDate.Year(), p.CompletedDate.Month()}
			monthly[k] += p.Budget.Cents
		}
	}

	if durationCount > 0 {
		days := durationSum.Hours() / 24 / float64(durationCount)
		a.AvgDurationDays = int(days + 0.5)
	}

	a.TopPlatforms = leaderboard(platformOrder, func(k string) (int, int64) {
		return byPlatform[k].count, byPlatform[k].revenue
	})
	a.TopClients = leaderboard(clientOrder, func(k string) (int, int64) {
		return byClient[k].count, byClient[k].revenue
	})

	for k, cents := range monthly {
		a.MonthlyRevenue = append(a.MonthlyRevenue, MonthRevenue{
			Year:         k.year,
			Month:        k.month,
			Label:        time.Date(k.year, k.month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006"),
			RevenueCents: cents,
		})
	}
	sort.Slice(a.MonthlyRevenue, func(i, j int) bool {
		if a.MonthlyRevenue[i].Year != a.MonthlyRevenue[j].Year {
			return a.MonthlyRevenue[i].Year < a.MonthlyRevenue[j].Year
		}
		return a.MonthlyRevenue[i].Month < a.MonthlyRevenue[j].Month
	})

	return a
}

// leaderboard builds the top-5 list in first-appearance order, sorted
// descending by revenue (stable).
func leaderboard(order []string, get func(string) (int, int64)) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(order))
	for _, k := range order {
		count, revenue := get(k)
		entries = append(entries, LeaderboardEntry{Name: k, Projects: count, RevenueCents: revenue})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RevenueCents > entries[j].RevenueCents
	})
	if len(entries) > leaderboardLimit {
		entries = entries[:leaderboardLimit]
	}
	return entries
}
