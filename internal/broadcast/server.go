// Package broadcast fans every emitted possession partial (and the final
// game summary) out over a websocket server, so a dashboard can follow a
// run live.
//
// An upgrader, a per-client buffered send channel, a write pump that owns
// the client's lifecycle, and a read pump that only drains pings/closes:
// one pipeline run has exactly one feed, so every connected client gets
// the same stream.
package broadcast

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/debs2013/possession/internal/events"
	"github.com/debs2013/possession/internal/telemetry"
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

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Server fans bus events out to every connected websocket client.
type Server struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer subscribes to the bus's partial/final topics and returns a
// Server ready to accept websocket connections via HandleWS.
func NewServer(bus *events.Bus) *Server {
	s := &Server{clients: make(map[*client]struct{})}
	bus.Subscribe(events.EventPeriodPartial, s.forward)
	bus.Subscribe(events.EventGameFinal, s.forward)
	return s
}

// forward runs on the publisher's goroutine: it serializes the event once
// and enqueues it to every client's send channel without blocking.
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		return fmt.Errorf("broadcast: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			telemetry.Warnf("broadcast: dropping message for a slow client")
		}
	}
	return nil
}

// HandleWS upgrades an HTTP request to a websocket connection and enrolls
// it as a broadcast recipient.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("broadcast: upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientSendBuf),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)
	go s.readPump(c)
}

// writePump drains the client's send channel onto the connection. It owns
// the client's lifecycle: on exit it deregisters the client (so forward
// never sends to a stale channel) and closes the connection.
func (s *Server) writePump(c *client) {
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

// readPump only drains pongs/close frames; no upstream messages are
// expected from a dashboard client.
func (s *Server) readPump(c *client) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// ListenAndServe starts the broadcast websocket server on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	telemetry.Infof("broadcast: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
