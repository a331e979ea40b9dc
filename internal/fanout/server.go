package fanout

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/charleschow/courtside/internal/core/scoreboard"
	"github.com/charleschow/courtside/internal/events"
	"github.com/charleschow/courtside/internal/telemetry"
)

const (
	clientSendBuf = 256
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// SnapshotFunc looks up the current state of a live session.
type SnapshotFunc func(sessionID string) (scoreboard.Snapshot, bool)

type displayClient struct {
	session string // empty follows every session
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
}

// Server fans out session events from the bus to connected displays.
type Server struct {
	lookup SnapshotFunc

	mu      sync.Mutex
	clients map[*displayClient]struct{}
}

func NewServer(bus *events.Bus, lookup SnapshotFunc) *Server {
	s := &Server{
		lookup:  lookup,
		clients: make(map[*displayClient]struct{}),
	}
	bus.SubscribeAll(s.forward)
	return s
}

// forward is called on the session's goroutine. It serializes the event
// and enqueues it to matching clients' send channels (non-blocking).
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		telemetry.Warnf("fanout: marshal error: %v", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		if c.session != "" && c.session != evt.SessionID {
			continue
		}
		select {
		case c.send <- data:
		default:
			telemetry.Metrics.FanoutDropped.Inc()
			telemetry.Warnf("fanout: dropping message for slow client session=%s", evt.SessionID)
		}
	}
	return nil
}

// HandleWS upgrades a display connection. Displays connect with
// ?session=<id>; without it they follow every session. A display that names
// a session gets its current snapshot straight away.
//
// The client is registered before the snapshot is read, so an event
// published in between is queued rather than lost.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	c := &displayClient{
		session: r.URL.Query().Get("session"),
		send:    make(chan []byte, clientSendBuf),
		done:    make(chan struct{}),
	}
	s.register(c)

	if c.session != "" {
		snap, ok := s.lookup(c.session)
		if !ok {
			s.unregister(c)
			http.Error(w, "unknown session", http.StatusNotFound)
			return
		}
		initial, err := MarshalEvent(events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventScoreboard,
			Sport:     snap.Sport,
			SessionID: c.session,
			Timestamp: time.Now(),
			Payload:   snap,
		})
		if err != nil {
			s.unregister(c)
			http.Error(w, "snapshot encode failed", http.StatusInternalServerError)
			return
		}
		select {
		case c.send <- initial:
		default:
			telemetry.Metrics.FanoutDropped.Inc()
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.unregister(c)
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}
	c.conn = conn
	telemetry.Metrics.FanoutClients.Inc()

	telemetry.Plainf("Fanout: Display Connected [%s]", clientLabel(c))

	go s.writePump(c)
	go s.readPump(c)
}

func (s *Server) register(c *displayClient) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
}

// unregister drops a client that never got a connection.
func (s *Server) unregister(c *displayClient) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// Clients reports how many displays are connected.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// writePump drains the client's send channel and writes to the WS connection.
// It owns the client lifecycle: on exit it removes the client from the map
// (so forward never sends to a stale channel) and closes the connection.
func (s *Server) writePump(c *displayClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error [%s]: %v", clientLabel(c), err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs / close frames.
// Displays are passive; anything they send is discarded.
// On exit it signals writePump via c.done (never closes c.send).
func (s *Server) readPump(c *displayClient) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *displayClient) {
	s.unregister(c)
	telemetry.Metrics.FanoutClients.Dec()
	telemetry.Plainf("Fanout: Display Disconnected [%s]", clientLabel(c))
}

func clientLabel(c *displayClient) string {
	if c.session == "" {
		return "all sessions"
	}
	return c.session
}
