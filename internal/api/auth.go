package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/vncman/core/internal/audit"
	"github.com/vncman/core/internal/auth"
)

// ticketTTL is how long a WebSocket tunnel ticket is valid.
const ticketTTL = 60 * time.Second

// registerRequest is the request body for POST /api/auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// loginRequest is the request body for POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /api/auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ticketStore holds pending WebSocket tunnel tickets.
// Tickets are single-use, expire after ticketTTL, and carry the identity
// of the user who minted them.
type ticketStore struct {
	tickets map[string]ticketEntry
	mu      sync.Mutex
}

type ticketEntry struct {
	userID    string
	expiresAt time.Time
}

func newTicketStore() *ticketStore {
	return &ticketStore{tickets: make(map[string]ticketEntry)}
}

// issue mints a ticket bound to a user.
func (ts *ticketStore) issue(userID string) string {
	ticket := generateTicket()
	ts.mu.Lock()
	ts.tickets[ticket] = ticketEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ticketTTL),
	}
	ts.mu.Unlock()
	return ticket
}

// consume validates a ticket and removes it (single-use). Returns the
// bound user ID and whether the ticket was valid.
func (ts *ticketStore) consume(ticket string) (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	entry, ok := ts.tickets[ticket]
	if !ok {
		return "", false
	}

	delete(ts.tickets, ticket)

	if time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.userID, true
}

// clean removes expired tickets from the store.
func (ts *ticketStore) clean() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	for ticket, entry := range ts.tickets {
		if now.After(entry.expiresAt) {
			delete(ts.tickets, ticket)
		}
	}
}

// cleanLoop runs clean periodically until the context is cancelled.
func (ts *ticketStore) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(ticketTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ts.clean()
		}
	}
}

// ticketBytes is the number of random bytes used for WebSocket tickets.
const ticketBytes = 32

// generateTicket creates a cryptographically random ticket string.
func generateTicket() string {
	b := make([]byte, ticketBytes)
	//nolint:errcheck // crypto/rand.Read always returns len(b) on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}

// handleRegister creates a new non-admin user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidUsername(req.Username) {
		writeBadRequest(w, "username must be 1-64 characters: letters, digits, dots, hyphens, underscores")
		return
	}
	if !auth.IsValidEmail(req.Email) {
		writeBadRequest(w, "invalid email address")
		return
	}
	if req.Password == "" {
		writeBadRequest(w, "password is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, "failed to hash password")
		return
	}

	user := &auth.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		IsAdmin:      false,
	}

	if err := s.authSvc.Users().Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			writeBadRequest(w, "username already registered")
		case errors.Is(err, auth.ErrEmailExists):
			writeBadRequest(w, "email already registered")
		default:
			s.logger.Error("creating user", "error", err)
			writeInternalError(w, "failed to create user")
		}
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionRegister,
		EntityType: audit.EntityUser,
		EntityID:   user.ID,
		UserID:     user.ID,
	})

	writeJSON(w, http.StatusCreated, user)
}

// handleLogin authenticates a user and returns a JWT token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, err := s.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid credentials")
			return
		}
		s.logger.Error("login", "error", err)
		writeInternalError(w, "failed to log in")
		return
	}

	if user, lookupErr := s.authSvc.Users().GetByUsername(r.Context(), req.Username); lookupErr == nil {
		s.recordAudit(r.Context(), &audit.Entry{
			Action:     audit.ActionLogin,
			EntityType: audit.EntitySession,
			UserID:     user.ID,
		})
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleMe returns the authenticated user's own account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r))
}

// handleWSTicket generates a single-use WebSocket tunnel ticket bound to
// the authenticated user. The client presents it as a query parameter
// when opening the tunnel.
func (s *Server) handleWSTicket(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	ticket := s.tickets.issue(user.ID)

	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(ticketTTL.Seconds()),
	})
}

// recordAudit writes an audit entry, logging rather than failing the
// request when the trail is unavailable.
func (s *Server) recordAudit(ctx context.Context, entry *audit.Entry) {
	if s.audit == nil {
		return
	}
	entry.Source = "api"
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", "action", entry.Action, "error", err)
	}
}
