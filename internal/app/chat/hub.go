/*
Package chat is the WebSocket transport of the relay.

This file defines the Hub, which tracks every live client by connection ID and the
fan-out group each one is subscribed to. It implements session.Broadcaster: frames are
marshalled once and queued on each recipient's send channel while the read lock is held,
so frames reach any single client in the order they were emitted.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"geochat/internal/pkg/logx"
	"geochat/internal/pkg/metrics"
)

// Hub owns the connection table and the room groups.
type Hub struct {
	// mu protects clients, groups, every client's id and closed flag, and shut.
	mu sync.RWMutex

	// clients maps connection ID to client.
	clients map[string]*Client

	// groups maps a room key to its subscribed clients, keyed by connection ID.
	groups map[string]map[string]*Client

	// shut is set once Shutdown has run; later registrations are refused.
	shut bool

	metrics *metrics.Recorder

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs an empty Hub.
func NewHub(m *metrics.Recorder) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		metrics: m,
		logger:  logx.Component("hub"),
	}
}

// Register adds a client. It returns false once the hub has shut down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shut {
		return false
	}

	h.clients[c.id] = c
	h.metrics.ConnectionOpened()

	h.logger.Debug().
		Str("connection_id", c.id).
		Int("total_clients", len(h.clients)).
		Msg("Client registered.")
	return true
}

// Unregister removes a client from the table and every group and closes its send queue.
// Calling it more than once is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[c.id]; ok && current == c {
		delete(h.clients, c.id)
	}

	for room, members := range h.groups {
		if members[c.id] == c {
			delete(members, c.id)
			if len(members) == 0 {
				delete(h.groups, room)
			}
		}
	}

	if !c.closed {
		c.closed = true
		close(c.send)
		h.metrics.ConnectionClosed()

		h.logger.Debug().
			Str("connection_id", c.id).
			Int("total_clients", len(h.clients)).
			Msg("Client unregistered.")
	}
}

// Rekey gives c a new connection ID. Group memberships under the old ID are dropped.
func (h *Hub) Rekey(c *Client, newID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	oldID := c.id
	if current, ok := h.clients[oldID]; ok && current == c {
		delete(h.clients, oldID)
	}
	for room, members := range h.groups {
		if members[oldID] == c {
			delete(members, oldID)
			if len(members) == 0 {
				delete(h.groups, room)
			}
		}
	}

	c.id = newID
	if !c.closed {
		h.clients[newID] = c
	}

	h.logger.Debug().
		Str("old_connection_id", oldID).
		Str("connection_id", newID).
		Msg("Client rekeyed.")
}

// Subscribe implements session.Broadcaster.
func (h *Hub) Subscribe(connectionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connectionID]
	if !ok {
		h.logger.Warn().
			Str("connection_id", connectionID).
			Str("room", room).
			Msg("Subscribe for unknown connection ignored.")
		return
	}

	members, ok := h.groups[room]
	if !ok {
		members = make(map[string]*Client)
		h.groups[room] = members
	}
	members[connectionID] = c
}

// Unsubscribe implements session.Broadcaster.
func (h *Hub) Unsubscribe(connectionID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[room]
	if !ok {
		return
	}

	delete(members, connectionID)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}

// Emit implements session.Broadcaster.
func (h *Hub) Emit(connectionID, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if c, ok := h.clients[connectionID]; ok {
		h.enqueue(c, frame)
	}
}

// EmitToRoom implements session.Broadcaster.
func (h *Hub) EmitToRoom(room, event string, payload any) {
	h.EmitToRoomExcept(room, "", event, payload)
}

// EmitToRoomExcept implements session.Broadcaster.
func (h *Hub) EmitToRoomExcept(room, exceptConnectionID, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.groups[room] {
		if id == exceptConnectionID {
			continue
		}
		h.enqueue(c, frame)
	}
}

// send queues a pre-encoded frame for c, used for acks.
func (h *Hub) send(c *Client, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.enqueue(c, frame)
}

// enqueue must be called with mu held (read or write).
func (h *Hub) enqueue(c *Client, frame []byte) {
	if c.closed {
		return
	}

	select {
	case c.send <- frame:
	default:
		h.logger.Warn().
			Str("connection_id", c.id).
			Int("queue_len", len(c.send)).
			Msg("Client send channel full, dropping frame.")
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Error marshaling event.")
		return nil, false
	}
	return frame, true
}

// members returns the connection IDs subscribed to room.
func (h *Hub) members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.groups[room]))
	for id := range h.groups[room] {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown refuses new clients and closes the send queue of every current one, which
// makes each WritePump send a close frame and end the connection.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.shut = true
	for _, c := range h.clients {
		if !c.closed {
			c.closed = true
			close(c.send)
			h.metrics.ConnectionClosed()
		}
	}

	h.logger.Info().Int("clients", len(h.clients)).Msg("Hub shut down.")
}
