package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/events"
	"github.com/charleschow/courtside/internal/telemetry"
)

// Notifier posts period and match results to a Discord channel webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client

	queue  chan webhookPayload
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewNotifier(webhookURL string) *Notifier {
	n := &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		queue:      make(chan webhookPayload, 64),
		done:       make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}

const (
	ColorYellow = 0xF1C40F
	ColorBlue   = 0x3498DB
)

// PeriodEndEmbed summarises a finished period. snap already shows the next
// period loaded, so the one that ended is Period-1.
func PeriodEndEmbed(snap scoreboard.Snapshot) Embed {
	return Embed{
		Title:       fmt.Sprintf("End of %s period · %s", humanize.Ordinal(snap.Clock.Period-1), snap.Sport),
		Description: scoreLine(snap),
		Color:       ColorBlue,
		Fields: []Field{
			{Name: "Fouls", Value: fmt.Sprintf("%d - %d", snap.Home.Fouls, snap.Away.Fouls), Inline: true},
			{Name: "Timeouts left", Value: fmt.Sprintf("%d - %d", snap.Home.TimeoutsRemaining, snap.Away.TimeoutsRemaining), Inline: true},
		},
	}
}

func MatchEndEmbed(snap scoreboard.Snapshot) Embed {
	e := Embed{
		Title:       fmt.Sprintf("Final · %s", snap.Sport),
		Description: scoreLine(snap),
		Color:       ColorYellow,
	}
	if top, ok := topScorer(snap); ok {
		e.Fields = append(e.Fields, Field{Name: "Top scorer", Value: fmt.Sprintf("#%d %s (%d)", top.Number, top.Name, top.Points), Inline: true})
	}
	return e
}

func scoreLine(snap scoreboard.Snapshot) string {
	return fmt.Sprintf("%s %d - %d %s", snap.Home.Name, snap.Home.Score, snap.Away.Score, snap.Away.Name)
}

func topScorer(snap scoreboard.Snapshot) (scoreboard.PlayerLine, bool) {
	var best scoreboard.PlayerLine
	found := false
	for _, team := range []scoreboard.TeamLine{snap.Home, snap.Away} {
		for _, p := range team.Players {
			if p.Points > best.Points {
				best, found = p, true
			}
		}
	}
	return best, found
}

// HandleEvent is an events.Handler for period and match ends. It runs on
// the session goroutine, so it only queues the post.
func (n *Notifier) HandleEvent(e events.Event) error {
	snap, ok := e.Payload.(scoreboard.Snapshot)
	if !ok {
		return fmt.Errorf("discord: unexpected payload %T", e.Payload)
	}

	var embed Embed
	switch e.Type {
	case events.EventPeriodEnd:
		embed = PeriodEndEmbed(snap)
	case events.EventMatchEnd:
		embed = MatchEndEmbed(snap)
	default:
		return nil
	}
	embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || !n.Enabled() {
		return nil
	}
	select {
	case n.queue <- webhookPayload{Embeds: []Embed{embed}}:
		return nil
	default:
		return fmt.Errorf("discord: queue full, dropped %s", e.Type)
	}
}

func (n *Notifier) run() {
	defer close(n.done)
	for p := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := n.send(ctx, p); err != nil {
			telemetry.Warnf("discord: %v", err)
		}
		cancel()
	}
}

// Close waits for queued posts to go out.
func (n *Notifier) Close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
}
