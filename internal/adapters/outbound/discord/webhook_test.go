package discord

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/events"
)

func finalSnapshot() scoreboard.Snapshot {
	return scoreboard.Snapshot{
		SessionID: "s1",
		Sport:     "basketball",
		Clock:     scoreboard.Clock{Period: 3, PeriodCount: 4},
		Home: scoreboard.TeamLine{Name: "Lions", Score: 41, Fouls: 7, TimeoutsRemaining: 1, Players: []scoreboard.PlayerLine{
			{Name: "Lucas Martin", Number: 4, Points: 18},
		}},
		Away: scoreboard.TeamLine{Name: "Tigers", Score: 38, Fouls: 9, Players: []scoreboard.PlayerLine{
			{Name: "Hugo Bernard", Number: 5, Points: 21},
		}},
	}
}

func TestEmbeds(t *testing.T) {
	pe := PeriodEndEmbed(finalSnapshot())
	if pe.Title != "End of 2nd period · basketball" || pe.Description != "Lions 41 - 38 Tigers" {
		t.Errorf("period embed = %+v", pe)
	}

	me := MatchEndEmbed(finalSnapshot())
	if len(me.Fields) != 1 || me.Fields[0].Value != "#5 Hugo Bernard (21)" {
		t.Errorf("match embed fields = %+v", me.Fields)
	}
}

func TestNotifier_PostsMatchEnd(t *testing.T) {
	var (
		mu    sync.Mutex
		posts []webhookPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		json.NewDecoder(r.Body).Decode(&p)
		mu.Lock()
		posts = append(posts, p)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, typ := range []events.EventType{events.EventScoreboard, events.EventMatchEnd} {
		if err := n.HandleEvent(events.Event{Type: typ, Timestamp: ts, Payload: finalSnapshot()}); err != nil {
			t.Fatalf("HandleEvent(%s): %v", typ, err)
		}
	}
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(posts) != 1 || len(posts[0].Embeds) != 1 {
		t.Fatalf("posts = %+v", posts)
	}
	e := posts[0].Embeds[0]
	if !strings.HasPrefix(e.Title, "Final") || e.Timestamp != "2026-03-01T12:00:00Z" {
		t.Errorf("embed = %+v", e)
	}
}

func TestNotifier_DisabledIsNoop(t *testing.T) {
	n := NewNotifier("")
	defer n.Close()
	if n.Enabled() {
		t.Error("Enabled with empty url")
	}
	if err := n.HandleEvent(events.Event{Type: events.EventMatchEnd, Payload: finalSnapshot()}); err != nil {
		t.Errorf("HandleEvent: %v", err)
	}
}
