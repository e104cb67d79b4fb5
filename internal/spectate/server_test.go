package spectate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kurve-project/kurve/internal/config"
	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/game"
)

func newTestServer(t *testing.T) (*Server, *events.Bus, *httptest.Server) {
	t.Helper()
	bus := events.NewBus()
	s := NewServer(config.SpectateConfig{Port: 0}, bus)
	ts := httptest.NewServer(s.buildRouter())
	t.Cleanup(func() {
		ts.Close()
		s.hub.closeAll()
		bus.Stop()
	})
	return s, bus, ts
}

func getState(t *testing.T, ts *httptest.Server) map[string]any {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestStateBeforeMatch(t *testing.T) {
	_, _, ts := newTestServer(t)

	body := getState(t, ts)
	if body["status"] != "waiting" {
		t.Errorf("status = %v, want waiting", body["status"])
	}
	if body["match"] != nil {
		t.Errorf("match = %v, want null", body["match"])
	}
}

func TestStateTracksMatchLifecycle(t *testing.T) {
	_, bus, ts := newTestServer(t)
	ctx := context.Background()

	if err := bus.EmitSync(ctx, events.Event{
		Type: events.EventMatchStarted,
		Payload: events.MatchStartedPayload{
			Mode:    events.ModeOffline,
			Players: []string{"alice", "bot 1"},
			Width:   25,
			Height:  10,
		},
	}); err != nil {
		t.Fatalf("EmitSync: %v", err)
	}

	slots := game.SpawnSlots(25, 10)
	g := game.New(25, 10, []*game.Player{
		game.NewPlayer("alice", slots[0]),
		game.NewPlayer("bot 1", slots[1]),
	}, 0)
	if err := bus.EmitSync(ctx, events.Event{
		Type:    events.EventFrameAdvanced,
		Payload: events.FrameAdvancedPayload{Snapshot: g.Snapshot()},
	}); err != nil {
		t.Fatalf("EmitSync: %v", err)
	}

	body := getState(t, ts)
	if body["status"] != "running" {
		t.Fatalf("status = %v, want running", body["status"])
	}
	match := body["match"].(map[string]any)
	if match["snapshot"] == nil {
		t.Fatal("expected a snapshot after a frame advanced")
	}

	if err := bus.EmitSync(ctx, events.Event{
		Type: events.EventMatchEnded,
		Payload: events.MatchEndedPayload{
			Mode:    events.ModeOffline,
			Players: []string{"alice", "bot 1"},
			Winner:  "alice",
		},
	}); err != nil {
		t.Fatalf("EmitSync: %v", err)
	}

	body = getState(t, ts)
	if body["status"] != "finished" {
		t.Errorf("status = %v, want finished", body["status"])
	}
	match = body["match"].(map[string]any)
	if match["winner"] != "alice" {
		t.Errorf("winner = %v, want alice", match["winner"])
	}
}

func TestWebsocketReceivesBroadcast(t *testing.T) {
	_, bus, ts := newTestServer(t)
	ctx := context.Background()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	if err := bus.EmitSync(ctx, events.Event{
		Type: events.EventMatchStarted,
		Payload: events.MatchStartedPayload{
			Mode:    events.ModeHost,
			Players: []string{"alice", "bob"},
			Width:   25,
			Height:  10,
		},
	}); err != nil {
		t.Fatalf("EmitSync: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket message: %v", err)
	}

	var view MatchView
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("unmarshal view: %v", err)
	}
	if view.Status != "running" || view.Mode != "host" {
		t.Errorf("view = %+v, want running host match", view)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
