// Package store holds the client's canvas state. It is the single source of
// truth for shapes: the editor and the network session both mutate it through
// explicit events, and renderers observe it through Subscribe. Conflicting
// remote updates resolve by last write wins, except that a remote write never
// clobbers a local edit made after the remote message was received.
package store

import (
	"sync"

	"livedraw/internal/geometry"
	"livedraw/internal/protocol"
)

// EventKind tags a store notification.
type EventKind string

const (
	EventUpserted EventKind = "upserted"
	EventRemoved  EventKind = "removed"
)

// Event describes one applied mutation. Shape is a clone and safe to keep.
type Event struct {
	Kind   EventKind
	ID     string
	Shape  geometry.Shape
	Remote bool
}

// Store is safe for concurrent use by the editor and the session goroutine.
type Store struct {
	mu         sync.RWMutex
	order      []string
	shapes     map[string]geometry.Shape
	localEdits map[string]int64 // shape id -> last local edit, unix ms
	subs       map[int]func(Event)
	nextSub    int

	now func() int64
}

func New() *Store {
	return &Store{
		shapes:     make(map[string]geometry.Shape),
		localEdits: make(map[string]int64),
		subs:       make(map[int]func(Event)),
		now:        protocol.Now,
	}
}

// ApplyLocal upserts a shape edited on this client. New shapes go to the top
// of the z-order; existing shapes keep their position.
func (s *Store) ApplyLocal(shape geometry.Shape) {
	s.mu.Lock()
	id := shape.ID()
	s.upsertLocked(id, shape.Clone())
	s.localEdits[id] = s.now()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Kind: EventUpserted, ID: id, Shape: shape.Clone(), Remote: false})
}

// ApplyRemote upserts a shape received from a peer. receivedAt is the unix
// millisecond timestamp at which the ciphertext arrived; if this client
// edited the same shape later than that, the remote version is discarded.
// Decryption may finish long after arrival, so receivedAt rather than the
// current time decides the conflict.
func (s *Store) ApplyRemote(shape geometry.Shape, receivedAt int64) {
	s.mu.Lock()
	id := shape.ID()
	if s.localEdits[id] >= receivedAt && s.localEdits[id] != 0 {
		s.mu.Unlock()
		return
	}
	s.upsertLocked(id, shape.Clone())
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Kind: EventUpserted, ID: id, Shape: shape.Clone(), Remote: true})
}

// RemoveLocal deletes a shape edited away on this client.
func (s *Store) RemoveLocal(id string) {
	s.mu.Lock()
	if _, ok := s.shapes[id]; !ok {
		s.mu.Unlock()
		return
	}
	s.removeLocked(id)
	s.localEdits[id] = s.now()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Kind: EventRemoved, ID: id, Remote: false})
}

// RemoveRemote deletes a shape on behalf of a peer, subject to the same
// conflict rule as ApplyRemote.
func (s *Store) RemoveRemote(id string, receivedAt int64) {
	s.mu.Lock()
	if s.localEdits[id] >= receivedAt && s.localEdits[id] != 0 {
		s.mu.Unlock()
		return
	}
	if _, ok := s.shapes[id]; !ok {
		s.mu.Unlock()
		return
	}
	s.removeLocked(id)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, Event{Kind: EventRemoved, ID: id, Remote: true})
}

// Get returns a clone of the shape, if present.
func (s *Store) Get(id string) (geometry.Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shape, ok := s.shapes[id]
	if !ok {
		return nil, false
	}
	return shape.Clone(), true
}

// Snapshot returns clones of all shapes in z-order, bottom first.
func (s *Store) Snapshot() []geometry.Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geometry.Shape, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.shapes[id].Clone())
	}
	return out
}

// Len reports the number of stored shapes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shapes)
}

// Subscribe registers a listener for store events and returns its
// unsubscribe function. Listeners run synchronously after each mutation and
// must not call back into the store.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) upsertLocked(id string, shape geometry.Shape) {
	if _, ok := s.shapes[id]; !ok {
		s.order = append(s.order, id)
	}
	s.shapes[id] = shape
}

func (s *Store) removeLocked(id string) {
	delete(s.shapes, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) subscribersLocked() []func(Event) {
	out := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Event), e Event) {
	for _, fn := range subs {
		fn(e)
	}
}
