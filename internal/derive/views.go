package derive

import "freelance/internal/snapshot"

// Dashboard bundles everything the dashboard screen consumes. All
// fields are plain JSON-serializable records.
type Dashboard struct {
	Stats     Stats         `json:"stats"`
	Activity  []Activity    `json:"recentActivity"`
	Tasks     []Task        `json:"tasks"`
	Financial Financial     `json:"financialData"`
	Platform  PlatformStats `json:"platformStats"`
	Insights  []Insight     `json:"insights"`
}

// BuildDashboard runs every dashboard calculator over the snapshot.
// done is the client-side set of completed task ids, applied as a final
// filter; pass nil to keep all tasks.
func BuildDashboard(s *snapshot.Snapshot, done map[string]bool) Dashboard {
	tasks := Tasks(s)
	return Dashboard{
		Stats:     Summarize(s),
		Activity:  RecentActivity(s),
		Tasks:     FilterTasks(tasks, done),
		Financial: FinancialRollup(s),
		Platform:  PlatformInsights(s),
		// Insight rules see the unfiltered task list: hiding a task on
		// one screen does not change the underlying facts.
		Insights: Insights(s, tasks),
	}
}
