package http

import (
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"freelance/internal/derive"
)

// parseDoneSet reads the ?done= query parameter: a comma-separated set
// of task ids the client has marked completed. Those tasks are excluded
// from the dashboard response but still feed the insight rules.
func parseDoneSet(r *http.Request) map[string]bool {
	raw := strings.TrimSpace(r.URL.Query().Get("done"))
	if raw == "" {
		return nil
	}
	done := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			done[id] = true
		}
	}
	if len(done) == 0 {
		return nil
	}
	return done
}

// doneCacheKey normalizes the done set into a stable cache key so that
// "a,b" and "b,a" hit the same entry.
func doneCacheKey(done map[string]bool) string {
	if len(done) == 0 {
		return "dashboard"
	}
	ids := make([]string, 0, len(done))
	for id := range done {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return "dashboard:" + strings.Join(ids, ",")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	done := parseDoneSet(r)
	key := doneCacheKey(done)

	if view, ok := s.dashboards.Get(key); ok {
		respondJSON(w, http.StatusOK, view)
		return
	}

	snap, fresh, err := s.loadSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard snapshot load failed", "error", err)
		respondError(w, http.StatusBadGateway, "could not load data")
		return
	}

	view := derive.BuildDashboard(snap, done)
	if fresh {
		s.dashboards.Set(key, view)
	}
	respondJSON(w, http.StatusOK, view)
}
