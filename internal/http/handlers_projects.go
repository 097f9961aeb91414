package http

import (
	"log/slog"
	"net/http"

	"freelance/internal/derive"
)

func (s *Server) handleProjectAnalytics(w http.ResponseWriter, r *http.Request) {
	if view, ok := s.analytics.Get("analytics"); ok {
		respondJSON(w, http.StatusOK, view)
		return
	}

	snap, fresh, err := s.loadSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Analytics snapshot load failed", "error", err)
		respondError(w, http.StatusBadGateway, "could not load data")
		return
	}

	view := derive.AnalyzeProjects(snap)
	if fresh {
		s.analytics.Set("analytics", view)
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleProjectBoard(w http.ResponseWriter, r *http.Request) {
	if board, ok := s.boards.Get("board"); ok {
		respondJSON(w, http.StatusOK, board)
		return
	}

	snap, fresh, err := s.loadSnapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Board snapshot load failed", "error", err)
		respondError(w, http.StatusBadGateway, "could not load data")
		return
	}

	board := derive.Partition(snap.Projects)
	if fresh {
		s.boards.Set("board", board)
	}
	respondJSON(w, http.StatusOK, board)
}

type laneMoveRequest struct {
	Lane string `json:"lane"`
}

// handleProjectLaneMove applies a drag-and-drop lane change: the target
// lane is rewritten into a status and progress pair and persisted.
func (s *Server) handleProjectLaneMove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req laneMoveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lane := derive.Lane(req.Lane)
	if !lane.Valid() {
		respondError(w, http.StatusUnprocessableEntity, "unknown lane")
		return
	}

	move, err := s.svc.MoveProjectToLane(r.Context(), id, lane)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	s.invalidateDerived()
	respondJSON(w, http.StatusOK, move)
}
