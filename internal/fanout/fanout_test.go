package fanout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/courtside/internal/core/clock"
	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/events"
)

func sample(id string) scoreboard.Snapshot {
	return scoreboard.Snapshot{
		SessionID: id,
		Sport:     "basketball",
		Version:   7,
		Clock:     scoreboard.Clock{State: clock.StateRunning, Period: 1, PeriodCount: 4, Remaining: 540, Display: "09:00", Running: true},
		Home:      scoreboard.TeamLine{ID: "h", Name: "Home", Score: 4},
		Away:      scoreboard.TeamLine{ID: "a", Name: "Away", Score: 2},
	}
}

func TestEventRoundTrip(t *testing.T) {
	in := events.Event{
		ID:        "evt-1",
		Type:      events.EventPeriodEnd,
		Sport:     "basketball",
		SessionID: "s1",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Payload:   sample("s1"),
	}
	data, err := MarshalEvent(in)
	if err != nil {
		t.Fatalf("MarshalEvent: %v", err)
	}
	out, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("UnmarshalEvent: %v", err)
	}
	if out.Type != in.Type || out.SessionID != "s1" || !out.Timestamp.Equal(in.Timestamp) {
		t.Errorf("envelope = %+v", out)
	}
	snap, ok := out.Payload.(scoreboard.Snapshot)
	if !ok || snap.Clock.Remaining != 540 || snap.Home.Score != 4 || snap.Clock.State != clock.StateRunning {
		t.Errorf("payload = %+v", out.Payload)
	}
}

func TestUnmarshalEvent_Errors(t *testing.T) {
	if _, err := UnmarshalEvent([]byte(`{"type":"red_card","payload":{}}`)); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := UnmarshalEvent([]byte(`not json`)); err == nil {
		t.Error("expected error for bad json")
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{20, 30 * time.Second},
	}
	for _, tt := range tests {
		if got := backoff(tt.attempt); got != tt.want {
			t.Errorf("backoff(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func newTestServer(t *testing.T) (*Server, *events.Bus, string) {
	t.Helper()
	bus := events.NewBus()
	srv := NewServer(bus, func(id string) (scoreboard.Snapshot, bool) {
		if id != "s1" {
			return scoreboard.Snapshot{}, false
		}
		return sample(id), true
	})
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return srv, bus, strings.TrimPrefix(ts.URL, "http://")
}

func readEvent(t *testing.T, conn *websocket.Conn) events.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	evt, err := UnmarshalEvent(msg)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return evt
}

func TestServer_FiltersBySession(t *testing.T) {
	srv, bus, addr := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws?session=s1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readEvent(t, conn)
	if first.Type != events.EventScoreboard || first.SessionID != "s1" {
		t.Fatalf("initial event = %+v", first)
	}
	if srv.Clients() != 1 {
		t.Errorf("Clients = %d", srv.Clients())
	}

	bus.Publish(events.Event{Type: events.EventScoreboard, SessionID: "s2", Payload: sample("s2")})
	bus.Publish(events.Event{Type: events.EventMatchEnd, SessionID: "s1", Payload: sample("s1")})

	got := readEvent(t, conn)
	if got.Type != events.EventMatchEnd || got.SessionID != "s1" {
		t.Errorf("got %s for %s, want match_end for s1", got.Type, got.SessionID)
	}
}

func TestServer_KeepsEventsDuringConnect(t *testing.T) {
	bus := events.NewBus()
	var once sync.Once
	srv := NewServer(bus, func(id string) (scoreboard.Snapshot, bool) {
		// A period ends while the display's snapshot is being read.
		once.Do(func() {
			bus.Publish(events.Event{Type: events.EventPeriodEnd, SessionID: id, Payload: sample(id)})
		})
		return sample(id), true
	})
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session=s1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if got := readEvent(t, conn); got.Type != events.EventPeriodEnd {
		t.Errorf("first event = %s, want period_end", got.Type)
	}
	if got := readEvent(t, conn); got.Type != events.EventScoreboard {
		t.Errorf("second event = %s, want scoreboard", got.Type)
	}
}

func TestServer_UnknownSessionNotRegistered(t *testing.T) {
	srv, _, addr := newTestServer(t)

	if _, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws?session=nope", nil); err == nil {
		t.Fatal("expected dial to fail")
	}
	if srv.Clients() != 0 {
		t.Errorf("Clients = %d after rejected dial, want 0", srv.Clients())
	}
}

func TestServer_UnknownSession(t *testing.T) {
	_, _, addr := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws?session=nope", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v", resp)
	}
}

func TestClient_RepublishesOnBus(t *testing.T) {
	_, _, addr := newTestServer(t)

	local := events.NewBus()
	got := make(chan events.Event, 4)
	local.SubscribeAll(func(e events.Event) error {
		got <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewClient(addr, "s1", local).ConnectWithRetry(ctx)
		close(done)
	}()

	select {
	case e := <-got:
		if e.SessionID != "s1" {
			t.Errorf("event for %s", e.SessionID)
		}
		if _, ok := e.Payload.(scoreboard.Snapshot); !ok {
			t.Errorf("payload %T", e.Payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop after cancel")
	}
}

func TestClient_URL(t *testing.T) {
	if got := NewClient("localhost:8780", "abc", nil).url(); got != "ws://localhost:8780/ws?session=abc" {
		t.Errorf("url = %q", got)
	}
	if got := NewClient("localhost:8780", "", nil).url(); got != "ws://localhost:8780/ws" {
		t.Errorf("url = %q", got)
	}
}
