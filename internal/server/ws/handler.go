// Package ws implements the relay's websocket endpoint: it upgrades HTTP
// requests, tracks each connection's room membership and fans messages out
// to room peers. Encrypted payloads pass through opaque.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"livedraw/internal/common"
	"livedraw/internal/logging"
	"livedraw/internal/protocol"
	"livedraw/internal/server/rooms"
	"livedraw/internal/server/roomstore"
)

// Handler serves the websocket endpoint.
type Handler struct {
	registry  *rooms.Registry
	store     roomstore.Repository
	log       logging.Logger
	upgrader  websocket.Upgrader
	heartbeat time.Duration
}

// NewHandler wires the endpoint to its room registry and room-id store.
// allowedOrigin of "*" accepts any Origin header.
func NewHandler(registry *rooms.Registry, store roomstore.Repository, log logging.Logger, allowedOrigin string, heartbeat time.Duration) *Handler {
	return &Handler{
		registry: registry,
		store:    store,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		heartbeat: heartbeat,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := newClient(h, conn)
	ctx := context.WithoutCancel(r.Context())
	go c.writePump(ctx)
	c.readPump(ctx)
}

// dispatch routes one inbound envelope. Unknown message types are logged and
// ignored; malformed payloads terminate the connection.
func (h *Handler) dispatch(ctx context.Context, c *Client, env *protocol.Envelope) {
	switch env.Type {
	case protocol.TypeRoomJoin:
		var msg protocol.RoomJoin
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			h.malformed(ctx, c, env.Type, err)
			return
		}
		h.handleJoin(ctx, c, &msg)

	case protocol.TypeLeaveRoom:
		var msg protocol.LeaveRoom
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			h.malformed(ctx, c, env.Type, err)
			return
		}
		h.leave(ctx, c)

	case protocol.TypeCursorMove:
		var msg protocol.CursorMove
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			h.malformed(ctx, c, env.Type, err)
			return
		}
		h.handleCursorMove(ctx, c, &msg)

	case protocol.TypeEncryption:
		var msg protocol.Encryption
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			h.malformed(ctx, c, env.Type, err)
			return
		}
		h.handleEncryption(ctx, c, &msg)

	default:
		h.log.Warn(ctx, "unknown message type", "type", env.Type)
	}
}

func (h *Handler) handleJoin(ctx context.Context, c *Client, msg *protocol.RoomJoin) {
	if c.roomID != "" {
		h.log.Warn(ctx, "duplicate join ignored", "room", msg.RoomID, "user", msg.UserID)
		return
	}

	exists, err := h.store.Exists(ctx, msg.RoomID)
	if err != nil {
		h.log.Error(ctx, "room lookup failed", "room", msg.RoomID, "error", err)
		c.terminate(websocket.CloseInternalServerErr, "")
		return
	}
	if !exists {
		h.log.Warn(ctx, "join rejected", "room", msg.RoomID, "user", msg.UserID)
		c.terminate(protocol.CloseProtocolError, common.ErrRoomNotFound.Error())
		return
	}

	c.roomID = msg.RoomID
	c.userID = msg.UserID
	c.username = msg.Username

	user := rooms.NewUser(msg.UserID, msg.Username, msg.CursorPos, c)
	room := h.registry.Join(ctx, msg.RoomID, user)

	// the joiner gets the current membership and every cached ciphertext
	joined, err := protocol.NewEnvelope(protocol.TypeRoomJoined, protocol.RoomJoined{
		ID:            room.ID,
		Users:         room.Users(),
		DataToDecrypt: room.Ciphertexts(),
		Timestamp:     protocol.Now(),
	})
	if err != nil {
		h.log.Error(ctx, "encode room-joined failed", "error", err)
		return
	}
	c.Send(joined)

	h.broadcast(ctx, room, c.userID, protocol.TypeUserJoined, protocol.UserEvent{
		User:      user.Info(),
		Timestamp: protocol.Now(),
	})
	h.log.Info(ctx, "user joined", "room", room.ID, "user", msg.UserID)
}

func (h *Handler) handleCursorMove(ctx context.Context, c *Client, msg *protocol.CursorMove) {
	if c.roomID == "" {
		return
	}
	room, ok := h.registry.Get(c.roomID)
	if !ok {
		return
	}
	info, ok := room.UpdateCursor(c.userID, msg.CursorPos)
	if !ok {
		return
	}
	h.broadcast(ctx, room, c.userID, protocol.TypeCursorMoved, protocol.CursorMoved{
		User:      info,
		Timestamp: protocol.Now(),
	})
}

func (h *Handler) handleEncryption(ctx context.Context, c *Client, msg *protocol.Encryption) {
	if c.roomID == "" {
		return
	}
	room, ok := h.registry.Get(c.roomID)
	if !ok {
		return
	}
	room.StoreEntry(msg.Flags, msg.EncryptedData)
	h.broadcast(ctx, room, c.userID, protocol.TypeDecryption, protocol.Decryption{
		EncryptedData:      msg.EncryptedData,
		ToBeAddedOrUpdated: msg.Flags.ToBeAddedOrUpdated,
		ToBeDeleted:        msg.Flags.ToBeDeleted,
		Timestamp:          protocol.Now(),
	})
}

// leave removes the client from its room, if any, and notifies the peers.
func (h *Handler) leave(ctx context.Context, c *Client) {
	if c.roomID == "" {
		return
	}
	room, user, ok := h.registry.Leave(ctx, c.roomID, c.userID)
	roomID := c.roomID
	c.roomID = ""
	if !ok {
		return
	}
	h.broadcast(ctx, room, user.ID, protocol.TypeUserLeaved, protocol.UserEvent{
		User:      user.Info(),
		Timestamp: protocol.Now(),
	})
	h.log.Info(ctx, "user left", "room", roomID, "user", user.ID)
}

// disconnect runs once when the read pump exits, for both clean closes and
// evicted connections.
func (h *Handler) disconnect(ctx context.Context, c *Client) {
	h.leave(ctx, c)
	c.terminate(protocol.CloseNormal, "")
	c.conn.Close()
}

func (h *Handler) malformed(ctx context.Context, c *Client, msgType string, err error) {
	h.log.Warn(ctx, "malformed payload", "type", msgType, "error", err)
	c.terminate(protocol.CloseProtocolError, common.ErrMalformedMessage.Error())
}

func (h *Handler) broadcast(ctx context.Context, room *rooms.Room, exceptUserID, msgType string, payload any) {
	env, err := protocol.NewEnvelope(msgType, payload)
	if err != nil {
		h.log.Error(ctx, "encode broadcast failed", "type", msgType, "error", err)
		return
	}
	room.Broadcast(exceptUserID, env)
}
