package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vncman/core/internal/audit"
	"github.com/vncman/core/internal/auth"
)

// updateUserRequest is the request body for PUT /api/users/{id}.
// Pointer fields distinguish "not supplied" from zero values.
type updateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	IsAdmin  *bool   `json:"is_admin"`
	Password *string `json:"password"`
}

// handleListUsers returns a page of user accounts. Admin only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	users, err := s.authSvc.Users().List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("listing users", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	total, err := s.authSvc.Users().Count(r.Context())
	if err != nil {
		s.logger.Error("counting users", "error", err)
		writeInternalError(w, "failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
		"total": total,
	})
}

// handleUpdateUser patches a user's email, full name, admin flag, or
// password. Admin only.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	user, err := s.authSvc.Users().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		writeInternalError(w, "failed to load user")
		return
	}

	if req.Email != nil {
		if !auth.IsValidEmail(*req.Email) {
			writeBadRequest(w, "invalid email address")
			return
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	// Hash before any write so a hashing failure leaves the record
	// untouched.
	var passwordHash string
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			writeInternalError(w, "failed to hash password")
			return
		}
		passwordHash = hash
	}

	if err := s.authSvc.Users().Update(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			writeConflict(w, "email already registered")
		case errors.Is(err, auth.ErrUserNotFound):
			writeNotFound(w, "user not found")
		default:
			s.logger.Error("updating user", "user_id", id, "error", err)
			writeInternalError(w, "failed to update user")
		}
		return
	}

	if passwordHash != "" {
		if err := s.authSvc.Users().UpdatePassword(r.Context(), id, passwordHash); err != nil {
			s.logger.Error("updating password", "user_id", id, "error", err)
			writeInternalError(w, "failed to update password")
			return
		}
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionUpdate,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     userFromContext(r).ID,
	})

	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser removes a user account and their machines. Admins
// cannot delete their own account. Admin only.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller := userFromContext(r)

	if id == caller.ID {
		writeBadRequest(w, "cannot delete your own account")
		return
	}

	// Explicit machine cleanup; the FK cascade is a backstop.
	if err := s.machines.DeleteByOwner(r.Context(), id); err != nil {
		s.logger.Error("deleting user machines", "user_id", id, "error", err)
		writeInternalError(w, "failed to delete user")
		return
	}

	if err := s.authSvc.Users().Delete(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, "user not found")
			return
		}
		s.logger.Error("deleting user", "user_id", id, "error", err)
		writeInternalError(w, "failed to delete user")
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionDelete,
		EntityType: audit.EntityUser,
		EntityID:   id,
		UserID:     caller.ID,
	})

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, falling back to a default.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
