// Package rooms holds the relay's in-memory room state: which users are in
// which room, their last known cursor positions, and the per-room cache of
// encrypted entries that late joiners replay. The relay never decrypts the
// entries; it only keys them by entry id for last-write-wins updates.
package rooms

import (
	"context"
	"sync"

	"livedraw/internal/logging"
	"livedraw/internal/protocol"
)

// Sender delivers an envelope to one member's connection. The websocket
// layer implements it; tests substitute a recording fake.
type Sender interface {
	Send(env *protocol.Envelope)
}

// Registry tracks every active room. A room springs into existence on the
// first join and is removed when its last member leaves.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	log   logging.Logger
}

func NewRegistry(log logging.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		log:   log,
	}
}

// Join adds the user to the room, creating the room if needed.
func (r *Registry) Join(ctx context.Context, roomID string, u *User) *Room {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		room = newRoom(roomID)
		r.rooms[roomID] = room
		r.log.Info(ctx, "room created", "room", roomID)
	}
	r.mu.Unlock()

	room.add(u)
	return room
}

// Leave removes the user from the room and returns the user's last known
// state. When the last member leaves, the room and its cached entries are
// dropped.
func (r *Registry) Leave(ctx context.Context, roomID, userID string) (*Room, *User, bool) {
	r.mu.Lock()
	room, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return nil, nil, false
	}

	u, removed := room.remove(userID)
	empty := room.Empty()
	if empty {
		delete(r.rooms, roomID)
	}
	r.mu.Unlock()

	if empty {
		r.log.Info(ctx, "room deleted", "room", roomID)
	}
	return room, u, removed
}

// Get returns the live room, if any.
func (r *Registry) Get(roomID string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	return room, ok
}

// Len reports the number of active rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
