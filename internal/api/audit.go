package api

import (
	"net/http"

	"github.com/vncman/core/internal/audit"
)

// handleListAudit returns audit log entries, newest first, with optional
// filtering. Admin-only (enforced by the router).
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusOK, &audit.ListResult{Entries: []audit.Entry{}})
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		UserID:     q.Get("user_id"),
		Offset:     queryInt(r, "skip", 0),
		Limit:      queryInt(r, "limit", 0),
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit log")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
