package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// ─── tunnel tickets ─────────────────────────────────────────────────────────

func TestWSTicket(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", false)
	token := env.loginAs(t, "alice")

	body := env.doJSON(t, http.MethodPost, "/api/auth/ws-ticket", token, nil, http.StatusOK)

	ticket, _ := body["ticket"].(string)
	if ticket == "" {
		t.Fatal("no ticket returned")
	}
	if expiresIn, _ := body["expires_in"].(float64); expiresIn != 60 {
		t.Errorf("expires_in = %v, want 60", body["expires_in"])
	}

	// Single use: the first consume yields the owner, the second fails.
	userID, ok := env.srv.tickets.consume(ticket)
	if !ok || userID != user.ID {
		t.Fatalf("consume = (%q, %v), want (%q, true)", userID, ok, user.ID)
	}
	if _, ok := env.srv.tickets.consume(ticket); ok {
		t.Error("ticket consumed twice")
	}
}

func TestWSTicket_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	env.doJSON(t, http.MethodPost, "/api/auth/ws-ticket", "", nil, http.StatusUnauthorized)
}

// ─── tunnel relay ───────────────────────────────────────────────────────────

// echoEndpoint stands in for a machine's VNC WebSocket endpoint.
func echoEndpoint(t *testing.T) *httptest.Server {
	t.Helper()

	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestTunnel_Relay(t *testing.T) {
	env := newTestEnv(t)
	backend := echoEndpoint(t)

	alice := env.seedUser(t, "alice", false)
	m := env.seedMachine(t, "echo", alice.ID, false)
	m.URL = wsURL(backend.URL)
	if err := env.machines.Update(context.Background(), m); err != nil {
		t.Fatalf("pointing machine at backend: %v", err)
	}

	ticket := env.srv.tickets.issue(alice.ID)

	conn, resp, err := websocket.DefaultDialer.Dial(
		wsURL(env.http.URL)+"/api/machines/"+m.ID+"/tunnel?ticket="+ticket, nil)
	if err != nil {
		t.Fatalf("dialing tunnel: %v", err)
	}
	defer conn.Close()
	resp.Body.Close()

	payload := []byte{0x52, 0x46, 0x42, 0x20} // RFB handshake prefix
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		t.Fatalf("writing through tunnel: %v", err)
	}

	msgType, echoed, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading echo: %v", err)
	}
	if msgType != websocket.BinaryMessage || string(echoed) != string(payload) {
		t.Errorf("echo = (%d, %v), want binary %v", msgType, echoed, payload)
	}
}

func TestTunnel_AuthFailures(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", false)
	bob := env.seedUser(t, "bob", false)
	m := env.seedMachine(t, "private", alice.ID, false)

	t.Run("missing ticket", func(t *testing.T) {
		env.doJSON(t, http.MethodGet, "/api/machines/"+m.ID+"/tunnel", "", nil, http.StatusUnauthorized)
	})

	t.Run("bogus ticket", func(t *testing.T) {
		env.doJSON(t, http.MethodGet, "/api/machines/"+m.ID+"/tunnel?ticket=bogus", "", nil, http.StatusUnauthorized)
	})

	t.Run("reused ticket", func(t *testing.T) {
		ticket := env.srv.tickets.issue(alice.ID)
		if _, ok := env.srv.tickets.consume(ticket); !ok {
			t.Fatal("first consume failed")
		}
		env.doJSON(t, http.MethodGet, "/api/machines/"+m.ID+"/tunnel?ticket="+ticket, "", nil, http.StatusUnauthorized)
	})

	t.Run("machine not readable", func(t *testing.T) {
		ticket := env.srv.tickets.issue(bob.ID)
		env.doJSON(t, http.MethodGet, "/api/machines/"+m.ID+"/tunnel?ticket="+ticket, "", nil, http.StatusForbidden)
	})

	t.Run("machine missing", func(t *testing.T) {
		ticket := env.srv.tickets.issue(alice.ID)
		env.doJSON(t, http.MethodGet, "/api/machines/mac-missing1/tunnel?ticket="+ticket, "", nil, http.StatusNotFound)
	})
}

func TestTunnel_BackendUnreachable(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", false)
	m := env.seedMachine(t, "gone", alice.ID, false)
	m.URL = "ws://127.0.0.1:1/vnc"
	if err := env.machines.Update(context.Background(), m); err != nil {
		t.Fatalf("updating machine url: %v", err)
	}

	ticket := env.srv.tickets.issue(alice.ID)
	env.doJSON(t, http.MethodGet, "/api/machines/"+m.ID+"/tunnel?ticket="+ticket, "", nil, http.StatusBadGateway)
}
