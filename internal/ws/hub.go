package ws

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"
)

// outboundQueueSize bounds each connection's outbound queue. A slow consumer
// loses messages rather than stalling the broadcaster.
const outboundQueueSize = 64

// Conn is one registered connection record. The hub owns the record and the
// sending side of the queue; the pump servicing the socket consumes it.
type Conn struct {
	UserID   uuid.UUID
	Username string

	queue  chan ServerMessage
	closed bool // guarded by the owning hub's mutex
}

// Outbound returns the receiving end of the connection's queue.
func (c *Conn) Outbound() <-chan ServerMessage {
	return c.queue
}

// Hub is the process-wide registry of live connections and room presence.
// All state is guarded by a single mutex; no operation holds it across
// blocking I/O (enqueueing is non-blocking by construction).
type Hub struct {
	mu          sync.Mutex
	connections map[uuid.UUID]*Conn
	rooms       map[uuid.UUID]map[uuid.UUID]struct{}

	logger  logger_lib.LoggerInterface
	metrics MetricsClient
}

func NewHub(logger logger_lib.LoggerInterface, metrics MetricsClient) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*Conn),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]struct{}),
		logger:      logger,
		metrics:     metrics,
	}
}

func (h *Hub) count(metric string) {
	if h.metrics != nil {
		h.metrics.Increment(metric)
	}
}

// Register creates a connection record for the user, superseding any prior
// one. The superseded record's queue is closed so its pump tears down
// promptly; its presence entries carry over to the new connection.
func (h *Hub) Register(userID uuid.UUID, username string) *Conn {
	conn := &Conn{
		UserID:   userID,
		Username: username,
		queue:    make(chan ServerMessage, outboundQueueSize),
	}

	h.mu.Lock()
	if prev, ok := h.connections[userID]; ok {
		prev.closed = true
		close(prev.queue)
		h.logger.Info(fmt.Sprintf("hub: superseded connection for user %s", userID))
	}
	h.connections[userID] = conn
	h.mu.Unlock()

	h.logger.Info(fmt.Sprintf("hub: registered user %s", userID))
	h.count("ws.connect")

	return conn
}

// Unregister removes the record and its presence entries, but only if c is
// still the current connection for its user. A superseded pump's teardown is
// therefore a no-op and can never evict the replacement.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	current, ok := h.connections[c.UserID]
	if !ok || current != c {
		h.mu.Unlock()
		return
	}

	delete(h.connections, c.UserID)
	c.closed = true
	close(c.queue)
	for _, members := range h.rooms {
		delete(members, c.UserID)
	}
	h.mu.Unlock()

	h.logger.Info(fmt.Sprintf("hub: unregistered user %s", c.UserID))
	h.count("ws.disconnect")
}

// Disconnect force-removes whatever connection the user currently has,
// clearing it from every room's presence set. Idempotent.
func (h *Hub) Disconnect(userID uuid.UUID) {
	h.mu.Lock()
	if conn, ok := h.connections[userID]; ok {
		delete(h.connections, userID)
		conn.closed = true
		close(conn.queue)
	}
	for _, members := range h.rooms {
		delete(members, userID)
	}
	h.mu.Unlock()

	h.logger.Info(fmt.Sprintf("hub: disconnected user %s", userID))
}

// JoinRoom adds the user to the room's presence set, notifies the other
// members, and sends the joiner a presence snapshot. The snapshot is computed
// after the add, so it always includes the joiner.
func (h *Hub) JoinRoom(roomID, userID uuid.UUID, username string, displayName *string) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.rooms[roomID] = members
	}
	members[userID] = struct{}{}

	joined := NewUserJoinedEvent(roomID, EventUser{ID: userID, Username: username, DisplayName: displayName})
	h.broadcastLocked(roomID, joined, userID)

	userIDs := make([]string, 0, len(members))
	for id := range members {
		userIDs = append(userIDs, id.String())
	}
	if conn, ok := h.connections[userID]; ok {
		h.trySend(conn, NewOnlineUsersEvent(roomID, userIDs))
	}
	h.mu.Unlock()
}

// LeaveRoom removes the user from presence and notifies remaining members.
// No-op if the user was not present.
func (h *Hub) LeaveRoom(roomID, userID uuid.UUID) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := members[userID]; !present {
		h.mu.Unlock()
		return
	}

	delete(members, userID)
	h.broadcastLocked(roomID, NewUserLeftEvent(roomID, userID), uuid.Nil)
	h.mu.Unlock()
}

// BroadcastToRoom delivers msg to every present member of the room except
// skipUser (uuid.Nil to skip nobody). Delivery is best-effort: a full or
// closed queue is dropped with a log line, never an error.
func (h *Hub) BroadcastToRoom(roomID uuid.UUID, msg ServerMessage, skipUser uuid.UUID) {
	h.mu.Lock()
	h.broadcastLocked(roomID, msg, skipUser)
	h.mu.Unlock()
}

// SendToUser delivers msg to a single user with the same best-effort
// semantics as BroadcastToRoom.
func (h *Hub) SendToUser(userID uuid.UUID, msg ServerMessage) {
	h.mu.Lock()
	conn, ok := h.connections[userID]
	if ok {
		h.trySend(conn, msg)
	}
	h.mu.Unlock()
}

// Presence returns the current presence set of a room.
func (h *Hub) Presence(roomID uuid.UUID) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.rooms[roomID]
	ids := make([]uuid.UUID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// broadcastLocked requires h.mu to be held.
func (h *Hub) broadcastLocked(roomID uuid.UUID, msg ServerMessage, skipUser uuid.UUID) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}

	for userID := range members {
		if userID == skipUser {
			continue
		}
		conn, ok := h.connections[userID]
		if !ok {
			continue
		}
		h.trySend(conn, msg)
	}
}

// trySend enqueues without ever blocking. Requires h.mu to be held.
func (h *Hub) trySend(conn *Conn, msg ServerMessage) {
	if conn.closed {
		h.logger.Error(fmt.Sprintf("hub: dropping message for user %s: queue closed", conn.UserID))
		h.count("ws.message.dropped")
		return
	}

	select {
	case conn.queue <- msg:
	default:
		h.logger.Error(fmt.Sprintf("hub: dropping message for user %s: queue full", conn.UserID))
		h.count("ws.message.dropped")
	}
}
