package redispub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/charleschow/courtside/internal/events"
	"github.com/charleschow/courtside/internal/fanout"
	"github.com/charleschow/courtside/internal/telemetry"
)

const (
	queueSize      = 1024
	publishTimeout = 2 * time.Second
)

// Publisher is the slice of the redis client the relay needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Dial connects to Redis and checks the connection.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

type message struct {
	channel string
	data    []byte
}

// Relay republishes session events on Redis pub/sub so displays attached to
// other servers can follow a match. Each session gets its own channel,
// <prefix>:<session id>, carrying the same JSON envelope as the WebSocket.
//
// HandleEvent runs on the session goroutine, so it only queues; a single
// worker does the network I/O.
type Relay struct {
	pub    Publisher
	prefix string

	queue  chan message
	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewRelay(pub Publisher, prefix string) *Relay {
	r := &Relay{
		pub:    pub,
		prefix: prefix,
		queue:  make(chan message, queueSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Channel returns the pub/sub channel for a session.
func (r *Relay) Channel(sessionID string) string {
	return r.prefix + ":" + sessionID
}

// HandleEvent is an events.Handler.
func (r *Relay) HandleEvent(e events.Event) error {
	data, err := fanout.MarshalEvent(e)
	if err != nil {
		return fmt.Errorf("relay: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	select {
	case r.queue <- message{channel: r.Channel(e.SessionID), data: data}:
		return nil
	default:
		telemetry.Metrics.RelayErrors.Inc()
		return fmt.Errorf("relay: queue full, dropped %s", e.Type)
	}
}

func (r *Relay) run() {
	defer close(r.done)
	for m := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := r.pub.Publish(ctx, m.channel, m.data).Err()
		cancel()
		if err != nil {
			telemetry.Metrics.RelayErrors.Inc()
			telemetry.Warnf("relay: publish %s: %v", m.channel, err)
			continue
		}
		telemetry.Metrics.RelayPublished.Inc()
	}
}

// Close stops accepting events and waits for queued ones to be sent.
func (r *Relay) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}
