package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vandelli/summit/internal/logger"
	"github.com/vandelli/summit/internal/models"
)

// fakeState is a minimal StateProvider for hub tests.
type fakeState struct {
	attendees []models.Attendee
	connected bool
}

func (f *fakeState) Attendees() []models.Attendee { return f.attendees }
func (f *fakeState) Sponsors() []models.Sponsor   { return nil }
func (f *fakeState) GlobalState() models.GlobalState {
	return models.GlobalState{AppState: models.AppStateNormal}
}
func (f *fakeState) Connected() bool { return f.connected }

func newTestServer(t *testing.T, state *fakeState) (*Hub, *httptest.Server) {
	t.Helper()
	hub := New(logger.NewWithLevel(slog.LevelWarn), state)
	hub.Start()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) models.WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg models.WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return msg
}

func TestClientReceivesSnapshotOnConnect(t *testing.T) {
	state := &fakeState{
		attendees: []models.Attendee{{ID: "a1", Name: "Ana", Email: "ana@agro.br"}},
		connected: true,
	}
	_, srv := newTestServer(t, state)
	conn := dial(t, srv)

	msg := readMessage(t, conn)
	if msg.Type != "snapshot" {
		t.Fatalf("first message type = %q, want snapshot", msg.Type)
	}

	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("payload type %T", msg.Payload)
	}
	attendees, ok := payload["attendees"].([]interface{})
	if !ok || len(attendees) != 1 {
		t.Errorf("snapshot attendees = %v", payload["attendees"])
	}
	if payload["connected"] != true {
		t.Errorf("snapshot connected = %v", payload["connected"])
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, srv := newTestServer(t, &fakeState{connected: true})

	conn1 := dial(t, srv)
	conn2 := dial(t, srv)
	readMessage(t, conn1) // snapshots
	readMessage(t, conn2)

	hub.BroadcastEvent("global_state", models.GlobalState{AppState: models.AppStateAttack})

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readMessage(t, conn)
		if msg.Type != "global_state" {
			t.Errorf("client %d message type = %q", i+1, msg.Type)
		}
	}
}

func TestBroadcastEventPayloadRoundTrips(t *testing.T) {
	hub, srv := newTestServer(t, &fakeState{})
	conn := dial(t, srv)
	readMessage(t, conn) // snapshot

	attendee := models.Attendee{ID: "a1", Name: "Ana", TicketNumbers: []int{1, 2, 3}}
	hub.BroadcastEvent("attendee_insert", attendee)

	msg := readMessage(t, conn)
	if msg.Type != "attendee_insert" {
		t.Fatalf("type = %q", msg.Type)
	}
	payload, _ := msg.Payload.(map[string]interface{})
	if payload["id"] != "a1" {
		t.Errorf("payload id = %v", payload["id"])
	}
}

func TestHubSurvivesImmediateDisconnect(t *testing.T) {
	hub, srv := newTestServer(t, &fakeState{})
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	// Clients that drop right after the upgrade race the snapshot delivery
	// against their own unregistration; none of them may take the hub down.
	for i := 0; i < 10; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		conn.Close()
	}

	conn := dial(t, srv)
	if msg := readMessage(t, conn); msg.Type != "snapshot" {
		t.Fatalf("first message type = %q, want snapshot", msg.Type)
	}

	hub.BroadcastEvent("global_state", models.GlobalState{AppState: models.AppStateNormal})
	if msg := readMessage(t, conn); msg.Type != "global_state" {
		t.Errorf("broadcast after churn: type = %q, want global_state", msg.Type)
	}
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	hub, srv := newTestServer(t, &fakeState{})
	conn := dial(t, srv)
	readMessage(t, conn)

	conn.Close()

	// The hub notices on its next read; give the pumps a moment.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mutex.RLock()
		n := len(hub.clients)
		hub.mutex.RUnlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("closed client never removed from the hub")
}
