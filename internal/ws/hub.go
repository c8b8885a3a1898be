package ws

import "sync"

// Conn is the subset of *websocket.Conn the hub relies on.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// UserRoom names the personal notification room of a user.
func UserRoom(userID string) string { return "user:" + userID }

// ChatRoom names the room of a chat thread.
func ChatRoom(chatID string) string { return "chat:" + chatID }

// Hub routes events to live connections through named rooms. Nothing is
// persisted: a connection's memberships vanish with the connection. Two room
// kinds exist, "user:<id>" for list-level notifications and "chat:<threadID>"
// for open chat views.
type Hub struct {
	mu     sync.RWMutex
	conns  map[Conn]struct{}
	rooms  map[string]map[Conn]struct{}
	joined map[Conn]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[Conn]struct{}),
		rooms:  make(map[string]map[Conn]struct{}),
		joined: make(map[Conn]map[string]struct{}),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = struct{}{}
}

// Unregister removes a connection and every room membership it holds.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room := range h.joined[conn] {
		h.removeFromRoom(conn, room)
	}
	delete(h.joined, conn)
	delete(h.conns, conn)
}

// Join adds the connection to the named room.
func (h *Hub) Join(conn Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[Conn]struct{})
	}
	h.rooms[room][conn] = struct{}{}

	if h.joined[conn] == nil {
		h.joined[conn] = make(map[string]struct{})
	}
	h.joined[conn][room] = struct{}{}
}

// Leave removes the connection from the named room.
func (h *Hub) Leave(conn Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoom(conn, room)
	if joined, ok := h.joined[conn]; ok {
		delete(joined, room)
	}
}

// BroadcastAll sends the payload to every registered connection. Failed
// writes close the connection; removal happens on Unregister.
func (h *Hub) BroadcastAll(payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(payload); err != nil {
			conn.Close()
		}
	}
}

// EmitToRoom sends the payload to every member of the room. An empty or
// unknown room is a silent no-op.
func (h *Hub) EmitToRoom(room string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.rooms[room] {
		if err := conn.WriteJSON(payload); err != nil {
			conn.Close()
		}
	}
}

// EmitToRoomExcept sends the payload to every member of the room except the
// given connection. Used for typing indicators, where the sender already
// knows they are typing.
func (h *Hub) EmitToRoomExcept(room string, exclude Conn, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.rooms[room] {
		if conn == exclude {
			continue
		}
		if err := conn.WriteJSON(payload); err != nil {
			conn.Close()
		}
	}
}

// caller must hold h.mu
func (h *Hub) removeFromRoom(conn Conn, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}
