// Package protocol defines the JSON envelope and payload types exchanged
// between clients and the relay server. The relay never inspects encrypted
// payload contents; the only structural knowledge it has is the entry id
// used to key its cache.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"livedraw/internal/geometry"
)

// Client-to-server message types.
const (
	TypeRoomJoin   = "room-join"
	TypeLeaveRoom  = "leave-room"
	TypeCursorMove = "cursor-move"
	TypeEncryption = "encryption"
)

// Server-to-client message types.
const (
	TypeRoomJoined  = "room-joined"
	TypeUserJoined  = "user-joined"
	TypeUserLeaved  = "user-leaved"
	TypeCursorMoved = "cursor-moved"
	TypeDecryption  = "decryption"
)

// Websocket close codes. CloseProtocolError is used both for unknown-room
// rejections and decryption-failure terminations.
const (
	CloseNormal        = 1000
	CloseProtocolError = 1007
)

// Envelope is the outer wire object: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload into an Envelope of the given type.
func NewEnvelope(msgType string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return &Envelope{Type: msgType, Payload: raw}, nil
}

// UserInfo is the member view shared with room peers.
type UserInfo struct {
	ID        string          `json:"id"`
	Username  string          `json:"username,omitempty"`
	CursorPos *geometry.Point `json:"cursorPos,omitempty"`
}

// EntryFlags tells the relay how to maintain its encrypted-entry cache for
// the shape identified by EntryID.
type EntryFlags struct {
	EntryID            string `json:"entryId"`
	ToBeAddedOrUpdated bool   `json:"toBeAddedOrUpdated"`
	ToBeDeleted        bool   `json:"toBeDeleted"`
}

// RoomJoin is sent once after the socket opens.
type RoomJoin struct {
	RoomID    string         `json:"roomId"`
	UserID    string         `json:"userId"`
	Username  string         `json:"username"`
	CursorPos geometry.Point `json:"cursorPos"`
}

// LeaveRoom announces an explicit leave; closing the socket has the same
// effect implicitly.
type LeaveRoom struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// CursorMove carries a throttled cursor position update.
type CursorMove struct {
	RoomID    string         `json:"roomId"`
	UserID    string         `json:"userId"`
	CursorPos geometry.Point `json:"cursorPos"`
}

// Encryption carries one encrypted shape update or deletion.
type Encryption struct {
	RoomID        string     `json:"roomId"`
	UserID        string     `json:"userId"`
	EncryptedData string     `json:"encryptedData"`
	Flags         EntryFlags `json:"flags"`
}

// RoomJoined is the reply to the joining socket only: the full membership
// list plus every cached ciphertext, so late joiners can reconstruct state.
type RoomJoined struct {
	ID            string     `json:"id"`
	Users         []UserInfo `json:"users"`
	DataToDecrypt []string   `json:"dataToDecrypt"`
	Timestamp     int64      `json:"timestamp"`
}

// UserEvent notifies remaining members of a join or leave.
type UserEvent struct {
	User      UserInfo `json:"user"`
	Timestamp int64    `json:"timestamp"`
}

// CursorMoved relays a peer's cursor position.
type CursorMoved struct {
	User      UserInfo `json:"user"`
	Timestamp int64    `json:"timestamp"`
}

// Decryption relays a ciphertext update to every member except the sender.
type Decryption struct {
	EncryptedData      string `json:"encryptedData"`
	ToBeAddedOrUpdated bool   `json:"toBeAddedOrUpdated"`
	ToBeDeleted        bool   `json:"toBeDeleted"`
	Timestamp          int64  `json:"timestamp"`
}

// Now returns the wire timestamp for the current moment, in milliseconds.
func Now() int64 { return time.Now().UnixMilli() }
