package rooms

import (
	"sync"

	"livedraw/internal/geometry"
	"livedraw/internal/protocol"
)

// User is one room member. The sender is the member's outbound channel; it
// must tolerate being called after the underlying connection closed.
type User struct {
	ID       string
	Username string
	Cursor   geometry.Point
	sender   Sender
}

func NewUser(id, username string, cursor geometry.Point, sender Sender) *User {
	return &User{ID: id, Username: username, Cursor: cursor, sender: sender}
}

// Info returns the member view shared with peers.
func (u *User) Info() protocol.UserInfo {
	cursor := u.Cursor
	return protocol.UserInfo{ID: u.ID, Username: u.Username, CursorPos: &cursor}
}

// Room is the shared state of one drawing session.
type Room struct {
	ID string

	mu      sync.RWMutex
	users   map[string]*User
	entries map[string]string // entry id -> opaque ciphertext, last write wins
}

func newRoom(id string) *Room {
	return &Room{
		ID:      id,
		users:   make(map[string]*User),
		entries: make(map[string]string),
	}
}

func (r *Room) add(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *Room) remove(userID string) (*User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if ok {
		delete(r.users, userID)
	}
	return u, ok
}

// Empty reports whether no members remain.
func (r *Room) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users) == 0
}

// Users returns a snapshot of the current membership.
func (r *Room) Users() []protocol.UserInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.UserInfo, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Info())
	}
	return out
}

// UpdateCursor records the member's latest cursor position and returns the
// updated member view.
func (r *Room) UpdateCursor(userID string, p geometry.Point) (protocol.UserInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return protocol.UserInfo{}, false
	}
	u.Cursor = p
	return u.Info(), true
}

// StoreEntry maintains the encrypted-entry cache according to the flags: a
// deletion evicts the entry, an add-or-update overwrites whatever ciphertext
// was cached under the same entry id.
func (r *Room) StoreEntry(flags protocol.EntryFlags, ciphertext string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case flags.ToBeDeleted:
		delete(r.entries, flags.EntryID)
	case flags.ToBeAddedOrUpdated:
		r.entries[flags.EntryID] = ciphertext
	}
}

// Ciphertexts returns every cached entry for replay to a joining member.
func (r *Room) Ciphertexts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for _, ct := range r.entries {
		out = append(out, ct)
	}
	return out
}

// Broadcast sends the envelope to every member except the one identified by
// exceptUserID. Pass an empty string to reach everyone.
func (r *Room) Broadcast(exceptUserID string, env *protocol.Envelope) {
	r.mu.RLock()
	targets := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		if u.ID == exceptUserID {
			continue
		}
		targets = append(targets, u)
	}
	r.mu.RUnlock()

	for _, u := range targets {
		u.sender.Send(env)
	}
}
