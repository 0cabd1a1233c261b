package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local UI connections only
	},
}

const (
	// publishBuffer bounds queued events while the broadcaster catches
	// up; further events are dropped, clients re-read history from the
	// events API.
	publishBuffer = 64

	// wsWriteTimeout caps a single write so one stalled client cannot
	// hold up the broadcast loop.
	wsWriteTimeout = 5 * time.Second
)

// EventsHub pushes gesture events to WebSocket clients as they are
// detected. All writes happen on a single broadcast goroutine; Publish
// is safe to call from any goroutine.
type EventsHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	sendCh  chan []byte
	log     logger.Logger
}

// NewEventsHub creates a hub and starts its broadcast goroutine.
func NewEventsHub() *EventsHub {
	h := &EventsHub{
		clients: make(map[*websocket.Conn]bool),
		sendCh:  make(chan []byte, publishBuffer),
		log:     logger.Named("ws"),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade", logger.Error(err))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	metrics.SetWSClients(len(h.clients))
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		metrics.SetWSClients(len(h.clients))
		h.mu.Unlock()
	}()

	// Keep the connection open; clients only listen.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish queues an event for broadcast. It never blocks: when the
// queue is full the event is dropped.
func (h *EventsHub) Publish(rec store.EventRecord) {
	msg, err := json.Marshal(rec)
	if err != nil {
		return
	}

	select {
	case h.sendCh <- msg:
	default:
		h.log.Debug(context.Background(), "event broadcast queue full, dropping")
	}
}

// broadcast is the sole writer to every client connection.
func (h *EventsHub) broadcast() {
	for msg := range h.sendCh {
		h.mu.RLock()
		conns := make([]*websocket.Conn, 0, len(h.clients))
		for conn := range h.clients {
			conns = append(conns, conn)
		}
		h.mu.RUnlock()

		for _, conn := range conns {
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug(context.Background(), "websocket write", logger.Error(err))
				// The read loop unregisters the client once the
				// connection is closed.
				conn.Close()
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *EventsHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
