package derive

import (
	"sort"

	"freelance/internal/snapshot"
)

// PlatformCount is one row of the client distribution by source.
type PlatformCount struct {
	Platform string  `json:"platform"`
	Clients  int     `json:"clients"`
	Percent  float64 `json:"percent"`
}

// PlatformStats summarizes client activity and acquisition sources.
type PlatformStats struct {
	TotalClients    int             `json:"totalClients"`
	ActiveClients   int             `json:"activeClients"`
	InactiveClients int             `json:"inactiveClients"`
	ActivePercent   float64         `json:"activePercent"`
	InactivePercent float64         `json:"inactivePercent"`
	Distribution    []PlatformCount `json:"distribution"`
}

// PlatformInsights computes active/dormant client counts (same 30-day
// threshold as task generation) and the per-source client distribution,
// sorted descending by count. Percentages are 0 when there are no
// clients at all.
func PlatformInsights(s *snapshot.Snapshot) PlatformStats {
	st := PlatformStats{TotalClients: len(s.Clients)}

	counts := make(map[string]int)
	var order []string
	for _, c := range s.Clients {
		if s.TakenAt.Sub(c.CreatedAt) <= DormancyThreshold {
			st.ActiveClients++
		}
		if _, seen := counts[c.Source]; !seen {
			order = append(order, c.Source)
		}
		counts[c.Source]++
	}
	st.InactiveClients = st.TotalClients - st.ActiveClients

	if st.TotalClients > 0 {
		st.ActivePercent = float64(st.ActiveClients) / float64(st.TotalClients) * 100
		st.InactivePercent = float64(st.InactiveClients) / float64(st.TotalClients) * 100
	}

	for _, source := range order {
		row := PlatformCount{Platform: source, Clients: counts[source]}
		if st.TotalClients > 0 {
			row.Percent = float64(row.Clients) / float64(st.TotalClients) * 100
		}
		st.Distribution = append(st.Distribution, row)
	}
	sort.SliceStable(st.Distribution, func(i, j int) bool {
		return st.Distribution[i].Clients > st.Distribution[j].Clients
	})

	return st
}
