package ws

import (
	"encoding/json"
	"sync"

	"bursary/internal/service"

	"github.com/gorilla/websocket"
)

// AuditHub fans audit events out to connected dashboard sockets. Slow or
// dead connections are dropped, never waited on: the feed is best-effort
// observability, the durable record is the ledger itself.
type AuditHub struct {
	mu    sync.RWMutex
	conns map[*conn]struct{}
}

type conn struct {
	send chan []byte
	ws   *websocket.Conn
	once sync.Once
}

func NewAuditHub() *AuditHub {
	return &AuditHub{conns: make(map[*conn]struct{})}
}

func (h *AuditHub) register(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *AuditHub) unregister(c *conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.once.Do(func() { close(c.send) })
}

// Broadcast queues payload to every connected client, dropping clients
// whose send buffer is full.
func (h *AuditHub) Broadcast(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		select {
		case c.send <- data:
		default:
			h.unregister(c)
		}
	}
}

// Sink adapts the hub to the core's audit sink interface.
type Sink struct {
	Hub *AuditHub
}

func (s Sink) Emit(e service.AuditEvent) {
	s.Hub.Broadcast(e)
}
