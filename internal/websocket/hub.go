// Package websocket pushes live-reload messages to preview pages.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/strata/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 16
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected preview pages and broadcasts to all of them.
//
// Connections are owned by the hub goroutine; every other goroutine talks to
// it through channels, so the clients map needs no lock.
type Hub struct {
	logger         logging.Logger
	originPatterns []string

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	count      chan chan int

	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	shutdownOnce sync.Once
}

// NewHub starts a hub. originPatterns are passed to websocket.Accept; with
// none, only same-host origins are accepted.
func NewHub(logger logging.Logger, originPatterns ...string) *Hub {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		logger:         logger.WithComponent("websocket"),
		originPatterns: originPatterns,
		register:       make(chan *client),
		unregister:     make(chan *client),
		broadcast:      make(chan []byte, 16),
		count:          make(chan chan int),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)

	clients := make(map[*client]struct{})
	drop := func(c *client) {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			close(c.send)
		}
	}

	for {
		select {
		case <-h.ctx.Done():
			for c := range clients {
				drop(c)
			}
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.logger.Debug(h.ctx, "Client connected", "clients", len(clients))
		case c := <-h.unregister:
			drop(c)
			h.logger.Debug(h.ctx, "Client disconnected", "clients", len(clients))
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// Too slow to keep up; it reconnects after reloading anyway.
					drop(c)
				}
			}
		case reply := <-h.count:
			reply <- len(clients)
		}
	}
}

// ServeHTTP upgrades the request and keeps the connection until the page
// goes away or the hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.originPatterns,
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.ctx.Done():
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	// Pages never send anything; reading only notices the close.
	readCtx := conn.CloseRead(h.ctx)
	h.writeLoop(readCtx, c)

	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				h.logger.Debug(ctx, "WebSocket write failed", "error", err.Error())
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Broadcast sends msg to every connected page. A zero Timestamp is set to
// now. Messages are dropped once the hub is shut down.
func (h *Hub) Broadcast(msg UpdateMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(h.ctx, err, "Failed to marshal broadcast message")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	}
}

// Clients returns the number of connected pages.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Shutdown disconnects every page and stops the hub.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(h.cancel)
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
