package chathub

import "sync"

// RoomRegistry tracks which connections are subscribed to which room.
// Rooms have no persisted form; a room exists exactly as long as it has
// members.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[Client]bool
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]map[Client]bool)}
}

// Join subscribes the connection to the room.
func (r *RoomRegistry) Join(roomID string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[Client]bool)
	}
	r.rooms[roomID][c] = true
}

// Leave unsubscribes the connection from the room, dropping the room
// once empty.
func (r *RoomRegistry) Leave(roomID string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.rooms[roomID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// LeaveAll unsubscribes the connection from every room. Called on
// disconnect.
func (r *RoomRegistry) LeaveAll(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID, m := range r.rooms {
		delete(m, c)
		if len(m) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Members returns a snapshot of the room's subscribers.
func (r *RoomRegistry) Members(roomID string) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.rooms[roomID]
	out := make([]Client, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	return out
}

// Contains reports whether the connection is subscribed to the room.
func (r *RoomRegistry) Contains(roomID string, c Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[roomID][c]
}
