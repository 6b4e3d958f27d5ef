// Package roomstore persists the set of known room ids. Joining an unknown
// room is a protocol violation, so the relay consults this store before
// admitting a connection. Room contents are never persisted here; only the
// fact that a room id was provisioned.
package roomstore

import "context"

// Repository answers whether a room id has been provisioned and registers
// new ones.
type Repository interface {
	// Exists reports whether the room id is known.
	Exists(ctx context.Context, roomID string) (bool, error)
	// Create registers a room id. Creating an existing id is not an error.
	Create(ctx context.Context, roomID string) error
}
