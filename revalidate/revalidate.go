// Package revalidate fans out cache-invalidation keys after successful
// mutations. The core only publishes keys; the presentation layer decides
// what to do with them, either through an in-process subscription or over
// the websocket endpoint.
package revalidate

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message is one invalidation signal, e.g.
// {"keys": ["list:categories", "detail:category:web-dev", "home"]}.
type Message struct {
	Keys []string `json:"keys"`
}

type Hub struct {
	mu        sync.Mutex
	conns     map[*websocket.Conn]bool
	subs      map[chan Message]bool
	broadcast chan Message
	log       zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		conns:     make(map[*websocket.Conn]bool),
		subs:      make(map[chan Message]bool),
		broadcast: make(chan Message, 100), // buffered to prevent blocking publishers
		log:       log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for msg := range h.broadcast {
		h.mu.Lock()
		for ch := range h.subs {
			select {
			case ch <- msg:
			default:
				// slow subscriber, drop rather than block the hub
			}
		}
		for conn := range h.conns {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn().Err(err).Msg("websocket write error")
				conn.Close()
				delete(h.conns, conn)
			}
		}
		h.mu.Unlock()
	}
}

// Publish queues one invalidation message. Publishing no keys is a no-op.
func (h *Hub) Publish(keys ...string) {
	if len(keys) == 0 {
		return
	}
	h.broadcast <- Message{Keys: keys}
}

// Subscribe registers an in-process listener.
func (h *Hub) Subscribe() chan Message {
	ch := make(chan Message, 16)
	h.mu.Lock()
	h.subs[ch] = true
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan Message) {
	h.mu.Lock()
	if h.subs[ch] {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Attach registers a websocket client and blocks reading until the peer
// goes away, mirroring how clients are tracked on the broadcast side.
func (h *Hub) Attach(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("revalidate client connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.mu.Lock()
			delete(h.conns, conn)
			h.mu.Unlock()
			conn.Close()
			h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("revalidate client disconnected")
			return
		}
	}
}
