package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vncman/core/internal/audit"
	"github.com/vncman/core/internal/machine"
)

// Tunnel timing constants.
const (
	tunnelDialTimeout  = 10 * time.Second
	tunnelWriteTimeout = 10 * time.Second
)

// upgrader configures the WebSocket upgrader for tunnel connections.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// handleTunnel relays WebSocket traffic between the client and a
// machine's VNC endpoint. Authentication is via single-use ticket query
// parameter (obtained from POST /api/auth/ws-ticket); the caller must be
// allowed to read the machine.
func (s *Server) handleTunnel(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}

	userID, ok := s.tickets.consume(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	user, err := s.authSvc.Users().GetByID(r.Context(), userID)
	if err != nil {
		writeUnauthorized(w, "invalid or expired ticket")
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

	if !machine.CanRead(user, m) {
		writeForbidden(w, "not authorised to access this machine")
		return
	}

	// Connect to the machine first: a failed dial should surface as an
	// HTTP error, not a prematurely-upgraded dead socket.
	dialer := websocket.Dialer{HandshakeTimeout: tunnelDialTimeout}
	remote, resp, err := dialer.DialContext(r.Context(), m.URL, nil)
	if err != nil {
		s.logger.Warn("tunnel dial failed", "machine_id", m.ID, "url", m.URL, "error", err)
		writeError(w, http.StatusBadGateway, "bad_gateway", "machine endpoint unreachable")
		return
	}
	if resp != nil {
		resp.Body.Close()
	}

	client, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("tunnel upgrade failed", "error", err)
		remote.Close()
		return
	}

	s.recordAudit(r.Context(), &audit.Entry{
		Action:     audit.ActionTunnel,
		EntityType: audit.EntityMachine,
		EntityID:   m.ID,
		UserID:     user.ID,
	})

	s.logger.Info("tunnel opened", "machine_id", m.ID, "user_id", user.ID)

	// Relay in both directions; the first side to error tears down both.
	done := make(chan struct{}, 2)
	go pipeWebSocket(client, remote, done)
	go pipeWebSocket(remote, client, done)
	<-done

	client.Close()
	remote.Close()
	s.logger.Info("tunnel closed", "machine_id", m.ID, "user_id", user.ID)
}

// pipeWebSocket copies messages from src to dst until either side fails.
func pipeWebSocket(src, dst *websocket.Conn, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	for {
		msgType, data, err := src.ReadMessage()
		if err != nil {
			return
		}
		//nolint:errcheck // Best-effort deadline; write error caught below
		dst.SetWriteDeadline(time.Now().Add(tunnelWriteTimeout))
		if err := dst.WriteMessage(msgType, data); err != nil {
			return
		}
	}
}
