package http

import (
	"net/http"

	"freelance/internal/core"
)

// Entity CRUD. Every handler follows the same shape: decode, validate
// against core rules, write through the entity service, invalidate the
// derived-view caches.

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.Repo().ListClients(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, clients)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var c core.Client
	if err := decodeJSON(w, r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.svc.CreateClient(r.Context(), c)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var c core.Client
	if err := decodeJSON(w, r, &c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = r.PathValue("id")
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.svc.UpdateClient(r.Context(), c); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteClient(r.Context(), r.PathValue("id")); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.svc.Repo().ListInvoices(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.Invoice
	if err := decodeJSON(w, r, &inv); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := inv.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.svc.CreateInvoice(r.Context(), inv)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.Invoice
	if err := decodeJSON(w, r, &inv); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	inv.ID = r.PathValue("id")
	if err := inv.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.svc.UpdateInvoice(r.Context(), inv); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusOK, inv)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteInvoice(r.Context(), r.PathValue("id")); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.svc.Repo().ListMeetings(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var m core.Meeting
	if err := decodeJSON(w, r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := m.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.svc.CreateMeeting(r.Context(), m)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	var m core.Meeting
	if err := decodeJSON(w, r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m.ID = r.PathValue("id")
	if err := m.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.svc.UpdateMeeting(r.Context(), m); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteMeeting(r.Context(), r.PathValue("id")); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Repo().ListProjects(r.Context())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := p.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.svc.CreateProject(r.Context(), p)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = r.PathValue("id")
	if err := p.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.svc.UpdateProject(r.Context(), p); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		respondStorageError(w, err)
		return
	}
	s.invalidateDerived()
	respondJSON(w, http.StatusNoContent, nil)
}
