// Package live pushes palace selections to every open socket of a session,
// so a desktop panel and a phone sheet stay in step.
package live

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ziwei/pkg/logger"
)

const writeWait = 2 * time.Second

var errUnknownSocket = errors.New("socket not registered")

// Hub groups sockets by session id. Each socket has its own write lock so a
// slow peer only delays writes to itself; the hub lock guards membership.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]*client
}

type client struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, b)
}

type Stats struct {
	Sessions int `json:"sessions"`
	Sockets  int `json:"sockets"`
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]*client)}
}

func (h *Hub) Add(id string, ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[id]
	if !ok {
		room = make(map[*websocket.Conn]*client)
		h.rooms[id] = room
	}
	room[ws] = &client{ws: ws}
}

func (h *Hub) Remove(id string, ws *websocket.Conn) {
	h.mu.Lock()
	if room, ok := h.rooms[id]; ok {
		delete(room, ws)
		if len(room) == 0 {
			delete(h.rooms, id)
		}
	}
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) client(id string, ws *websocket.Conn) *client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rooms[id][ws]
}

// Send writes v to one registered socket.
func (h *Hub) Send(id string, ws *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c := h.client(id, ws)
	if c == nil {
		return errUnknownSocket
	}
	return c.write(b)
}

// BroadcastJSON writes v to every socket of session id. Sockets that fail
// are dropped.
func (h *Hub) BroadcastJSON(id string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Named("live").Warnw("encode broadcast failed", "err", err)
		return
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.rooms[id]))
	for _, c := range h.rooms[id] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.Remove(id, c.ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := Stats{Sessions: len(h.rooms)}
	for _, room := range h.rooms {
		s.Sockets += len(room)
	}
	return s
}
