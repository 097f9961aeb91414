// Package http exposes the JSON API: derived dashboard views, project
// analytics, the kanban board, and CRUD for the four entity types.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"freelance/internal/cache"
	"freelance/internal/derive"
	"freelance/internal/middleware/ratelimit"
	"freelance/internal/middleware/security"
	"freelance/internal/middleware/trace"
	"freelance/internal/services"
	"freelance/internal/snapshot"
)

// Server wires the entity service, the snapshot loader, and the derived
// view caches behind a classic net/http server.
type Server struct {
	http.Server

	svc    *services.EntityService
	loader *snapshot.Loader
	holder *snapshot.Holder[*snapshot.Snapshot]

	dashboards *cache.LRUCache[derive.Dashboard]
	analytics  *cache.LRUCache[derive.ProjectAnalytics]
	boards     *cache.LRUCache[derive.Board]
	cacheMgr   *cache.Manager

	detector *security.Detector
	limiter  *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer builds the server. src is the snapshot source backing the
// derived views; in production it is svc.Repo(), tests substitute fakes.
func NewServer(addr string, svc *services.EntityService, src snapshot.Source, cacheTTL time.Duration) *Server {
	s := &Server{
		svc:        svc,
		loader:     snapshot.NewLoader(src),
		holder:     &snapshot.Holder[*snapshot.Snapshot]{},
		dashboards: cache.NewLRUCache[derive.Dashboard](32, cacheTTL),
		analytics:  cache.NewLRUCache[derive.ProjectAnalytics](4, cacheTTL),
		boards:     cache.NewLRUCache[derive.Board](4, cacheTTL),
		cacheMgr:   cache.NewManager(),
		detector:   security.NewDetector(),
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	s.cacheMgr.Register(s.dashboards)
	s.cacheMgr.Register(s.analytics)
	s.cacheMgr.Register(s.boards)
	s.cacheMgr.StartCleanup(time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/projects/analytics", s.handleProjectAnalytics)
	mux.HandleFunc("GET /api/projects/board", s.handleProjectBoard)
	mux.HandleFunc("POST /api/projects/{id}/lane", s.handleProjectLaneMove)

	mux.HandleFunc("GET /api/clients", s.handleListClients)
	mux.HandleFunc("POST /api/clients", s.handleCreateClient)
	mux.HandleFunc("PUT /api/clients/{id}", s.handleUpdateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", s.handleDeleteClient)

	mux.HandleFunc("GET /api/invoices", s.handleListInvoices)
	mux.HandleFunc("POST /api/invoices", s.handleCreateInvoice)
	mux.HandleFunc("PUT /api/invoices/{id}", s.handleUpdateInvoice)
	mux.HandleFunc("DELETE /api/invoices/{id}", s.handleDeleteInvoice)

	mux.HandleFunc("GET /api/meetings", s.handleListMeetings)
	mux.HandleFunc("POST /api/meetings", s.handleCreateMeeting)
	mux.HandleFunc("PUT /api/meetings/{id}", s.handleUpdateMeeting)
	mux.HandleFunc("DELETE /api/meetings/{id}", s.handleDeleteMeeting)

	mux.HandleFunc("GET /api/projects", s.handleListProjects)
	mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	mux.HandleFunc("PUT /api/projects/{id}", s.handleUpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)

	traceMW := trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitMW := s.limiter.Middleware(s.detector.ExtractClientIP, nil)

	var handler http.Handler = mux
	handler = limitMW(handler)
	handler = headersMW.Middleware(handler)
	handler = s.suspiciousRequestFilter(handler)
	handler = traceMW.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// suspiciousRequestFilter rejects requests matching known probe
// patterns before they reach any handler.
func (s *Server) suspiciousRequestFilter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request blocked",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r))
			respondError(w, http.StatusBadRequest, "bad request")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateDerived drops every cached derived view. Called after each
// successful write so readers never see a view computed from old data.
func (s *Server) invalidateDerived() {
	s.dashboards.Clear()
	s.analytics.Clear()
	s.boards.Clear()
}

// loadSnapshot fetches a fresh snapshot, falling back to the last good
// one when a read fails. Concurrent refreshes resolve last-started-wins
// through the holder: a refresh that started earlier but finished later
// yields to the newer snapshot the holder retained. The fresh return is
// false on both fallback paths; views derived from a superseded or
// previous snapshot must not be cached.
func (s *Server) loadSnapshot(ctx context.Context) (snap *snapshot.Snapshot, fresh bool, err error) {
	token := s.holder.Begin()
	snap, err = s.loader.Load(ctx)
	if err != nil {
		if prev, ok := s.holder.Latest(); ok {
			slog.WarnContext(ctx, "Snapshot refresh failed, serving previous snapshot",
				"error", err,
				"snapshot_age", time.Since(prev.TakenAt).String())
			return prev, false, nil
		}
		return nil, false, err
	}
	if !s.holder.Complete(token, snap) {
		newer, _ := s.holder.Latest()
		return newer, false, nil
	}
	return snap, true, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Repo().Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops background cache and limiter goroutines before
// draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
