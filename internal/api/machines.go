package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vncman/core/internal/audit"
	"github.com/vncman/core/internal/machine"
)

// createMachineRequest is the request body for POST /api/machines.
type createMachineRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	IsShared    bool   `json:"is_shared"`
}

// updateMachineRequest is the request body for PUT /api/machines/{id}.
// Pointer fields distinguish "not supplied" from zero values.
type updateMachineRequest struct {
	Name        *string `json:"name"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
	IsShared    *bool   `json:"is_shared"`
}

// handleListMachines returns the machines visible to the caller:
// shared machines plus their own.
func (s *Server) handleListMachines(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	machines, err := s.machines.ListVisible(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("listing machines", "error", err)
		writeInternalError(w, "failed to list machines")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"machines": machines,
		"count":    len(machines),
	})
}

// handleListSharedMachines returns only the shared machines. Admin only.
func (s *Server) handleListSharedMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := s.machines.ListShared(r.Context())
	if err != nil {
		s.logger.Error("listing shared machines", "error", err)
		writeInternalError(w, "failed to list machines")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"machines": machines,
		"count":    len(machines),
	})
}

// handleCreateMachine registers a new machine owned by the caller.
// Only admins may mark a machine shared on creation; the flag is
// silently dropped for everyone else.
func (s *Server) handleCreateMachine(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	var req createMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.URL == "" {
		writeBadRequest(w, "url is required")
		return
	}

	m := &machine.Machine{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		OwnerID:     user.ID,
		IsShared:    req.IsShared && user.IsAdmin,
	}

	if err := s.machines.Create(r.Context(), m); err != nil {
		s.logger.Error("creating machine", "error", err)
		writeInternalError(w, "failed to create machine")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionCreate,
		EntityType: audit.EntityMachine,
		EntityID:   m.ID,
		UserID:     user.ID,
	})

	writeJSON(w, http.StatusCreated, m)
}

// handleGetMachine returns a single machine if the caller may read it.
func (s *Server) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	m, err := s.machines.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, machine.ErrMachineNotFound) {
			writeNotFound(w, "machine not found")
			return
		}
		writeInternalError(w, "failed to load machine")
		return
	}

	if !machine.CanRead(user, m) {
		writeForbidden(w, "not authorised to access this machine")
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// handleUpdateMachine modifies a machine if the caller may write it.
// The is_shared flag only changes when the caller is an admin; other
// callers' attempts are silently ignored.
func (s *Server) handleUpdateMachine(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)

	var req updateMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	m, err := s.machines.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, machine.ErrMachineNotFound) {
			writeNotFound(w, "machine not found")
			return
		}
		writeInternalError(w, "failed to load machine")
		return
	}

	if !machine.CanWrite(user, m) {
		writeForbidden(w, "not authorised to modify this machine")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			writeBadRequest(w, "name must not be empty")
			return
		}
		m.Name = *req.Name
	}
	if req.URL != nil {
		if *req.URL == "" {
			writeBadRequest(w, "url must not be empty")
			return
		}
		m.URL = *req.URL
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.IsShared != nil && user.IsAdmin {
		m.IsShared = *req.IsShared
	}

	if err := s.machines.Update(r.Context(), m); err != nil {
		if errors.Is(err, machine.ErrMachineNotFound) {
			writeNotFound(w, "machine not found")
			return
		}
		s.logger.Error("updating machine", "machine_id", m.ID, "error", err)
		writeInternalError(w, "failed to update machine")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityMachine,
		EntityID:   m.ID,
		UserID:     user.ID,
	})

	writeJSON(w, http.StatusOK, m)
}

// handleDeleteMachine removes a machine if the caller may write it.
func (s *Server) handleDeleteMachine(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	id := chi.URLParam(r, "id")

	m, err := s.machines.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, machine.ErrMachineNotFound) {
			writeNotFound(w, "machine not found")
			return
		}
		writeInternalError(w, "failed to load machine")
		return
	}

	if !machine.CanWrite(user, m) {
		writeForbidden(w, "not authorised to delete this machine")
		return
	}

	if err := s.machines.Delete(r.Context(), id); err != nil {
		if errors.Is(err, machine.ErrMachineNotFound) {
			writeNotFound(w, "machine not found")
			return
		}
		s.logger.Error("deleting machine", "machine_id", id, "error", err)
		writeInternalError(w, "failed to delete machine")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityMachine,
		EntityID:   id,
		UserID:     user.ID,
	})

	w.WriteHeader(http.StatusNoContent)
}
