// Package session connects a client to a relay room. It owns the websocket,
// encrypts outgoing shape updates, decrypts incoming ones into the shape
// store, and tracks the room's peers. A decryption failure is fatal: the
// session closes the socket with a policy-violation code, because a key
// mismatch cannot heal itself.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"livedraw/internal/client/store"
	"livedraw/internal/common"
	"livedraw/internal/e2ee"
	"livedraw/internal/geometry"
	"livedraw/internal/logging"
	"livedraw/internal/protocol"
)

// Handlers receive room lifecycle notifications. Nil handlers are skipped.
// They run on the session's read goroutine and must return quickly.
type Handlers struct {
	OnJoined     func(roomID string, users []protocol.UserInfo)
	OnUserJoined func(protocol.UserInfo)
	OnUserLeft   func(protocol.UserInfo)
	OnCursor     func(protocol.UserInfo)
	OnClosed     func(err error)
}

// Session is one membership in one room.
type Session struct {
	conn     *websocket.Conn
	cipher   *e2ee.Cipher
	store    *store.Store
	log      logging.Logger
	handlers Handlers

	roomID   string
	userID   string
	username string

	writeMu sync.Mutex
	closed  atomic.Bool

	peersMu sync.RWMutex
	peers   map[string]protocol.UserInfo

	throttle *cursorThrottle

	wg sync.WaitGroup
}

// Dial connects to the relay, derives the room key from the shared secret
// and joins the room. The returned session is already receiving events.
func Dial(ctx context.Context, url, roomID, secret, username string, st *store.Store, log logging.Logger, handlers Handlers) (*Session, error) {
	cipher, err := e2ee.NewCipher(secret)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	s := &Session{
		conn:     conn,
		cipher:   cipher,
		store:    st,
		log:      log,
		handlers: handlers,
		roomID:   roomID,
		userID:   uuid.NewString(),
		username: username,
		peers:    make(map[string]protocol.UserInfo),
	}
	s.throttle = newCursorThrottle(s.sendCursor)

	if err := s.write(protocol.TypeRoomJoin, protocol.RoomJoin{
		RoomID:   roomID,
		UserID:   s.userID,
		Username: username,
	}); err != nil {
		conn.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop(ctx)
	return s, nil
}

// UserID returns this member's generated id.
func (s *Session) UserID() string { return s.userID }

// Peers returns the other members currently known in the room.
func (s *Session) Peers() []protocol.UserInfo {
	s.peersMu.RLock()
	defer s.peersMu.RUnlock()
	out := make([]protocol.UserInfo, 0, len(s.peers))
	for _, u := range s.peers {
		out = append(out, u)
	}
	return out
}

// ShareShape encrypts the shape and publishes it to the room.
func (s *Session) ShareShape(shape geometry.Shape) error {
	return s.shareEncrypted(shape, protocol.EntryFlags{
		EntryID:            shape.ID(),
		ToBeAddedOrUpdated: true,
	})
}

// ShareRemoval encrypts the shape's final state and publishes its deletion.
func (s *Session) ShareRemoval(shape geometry.Shape) error {
	return s.shareEncrypted(shape, protocol.EntryFlags{
		EntryID:     shape.ID(),
		ToBeDeleted: true,
	})
}

func (s *Session) shareEncrypted(shape geometry.Shape, flags protocol.EntryFlags) error {
	ciphertext, err := s.cipher.Encrypt(shape)
	if err != nil {
		return err
	}
	return s.write(protocol.TypeEncryption, protocol.Encryption{
		RoomID:        s.roomID,
		UserID:        s.userID,
		EncryptedData: ciphertext,
		Flags:         flags,
	})
}

// MoveCursor publishes a cursor position, throttled so rapid movement does
// not flood the room.
func (s *Session) MoveCursor(p geometry.Point) {
	if s.closed.Load() {
		return
	}
	s.throttle.Offer(p)
}

func (s *Session) sendCursor(p geometry.Point) {
	_ = s.write(protocol.TypeCursorMove, protocol.CursorMove{
		RoomID:    s.roomID,
		UserID:    s.userID,
		CursorPos: p,
	})
}

// Leave announces the departure and closes the session cleanly.
func (s *Session) Leave() {
	_ = s.write(protocol.TypeLeaveRoom, protocol.LeaveRoom{
		RoomID:   s.roomID,
		UserID:   s.userID,
		Username: s.username,
	})
	s.close(protocol.CloseNormal, "", nil)
}

// Close tears the session down without a leave announcement; the relay
// treats the disconnect as an implicit leave.
func (s *Session) Close() {
	s.close(protocol.CloseNormal, "", nil)
}

// write marshals and sends one envelope. Writes after close are silent
// no-ops so callers do not need to track session state.
func (s *Session) write(msgType string, payload any) error {
	if s.closed.Load() {
		return nil
	}
	env, err := protocol.NewEnvelope(msgType, payload)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed.Load() {
		return nil
	}
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteJSON(env)
}

func (s *Session) close(code int, reason string, cause error) {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.throttle.Stop()

	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(time.Second))
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	s.writeMu.Unlock()
	s.conn.Close()

	if s.handlers.OnClosed != nil {
		s.handlers.OnClosed(cause)
	}
}

func (s *Session) readLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		var env protocol.Envelope
		if err := s.conn.ReadJSON(&env); err != nil {
			if s.closed.Load() {
				return
			}
			s.close(protocol.CloseNormal, "", err)
			return
		}
		s.handle(ctx, &env)
		if s.closed.Load() {
			return
		}
	}
}

func (s *Session) handle(ctx context.Context, env *protocol.Envelope) {
	receivedAt := protocol.Now()

	switch env.Type {
	case protocol.TypeRoomJoined:
		var msg protocol.RoomJoined
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			s.log.Warn(ctx, "bad room-joined payload", "error", err)
			return
		}
		s.setPeers(msg.Users)
		for _, ciphertext := range msg.DataToDecrypt {
			if !s.applyCiphertext(ctx, ciphertext, false, receivedAt) {
				return
			}
		}
		if s.handlers.OnJoined != nil {
			s.handlers.OnJoined(msg.ID, msg.Users)
		}

	case protocol.TypeUserJoined:
		var msg protocol.UserEvent
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			s.log.Warn(ctx, "bad user-joined payload", "error", err)
			return
		}
		s.upsertPeer(msg.User)
		if s.handlers.OnUserJoined != nil {
			s.handlers.OnUserJoined(msg.User)
		}

	case protocol.TypeUserLeaved:
		var msg protocol.UserEvent
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			s.log.Warn(ctx, "bad user-leaved payload", "error", err)
			return
		}
		s.removePeer(msg.User.ID)
		if s.handlers.OnUserLeft != nil {
			s.handlers.OnUserLeft(msg.User)
		}

	case protocol.TypeCursorMoved:
		var msg protocol.CursorMoved
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			s.log.Warn(ctx, "bad cursor-moved payload", "error", err)
			return
		}
		s.upsertPeer(msg.User)
		if s.handlers.OnCursor != nil {
			s.handlers.OnCursor(msg.User)
		}

	case protocol.TypeDecryption:
		var msg protocol.Decryption
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			s.log.Warn(ctx, "bad decryption payload", "error", err)
			return
		}
		s.applyCiphertext(ctx, msg.EncryptedData, msg.ToBeDeleted, receivedAt)

	default:
		s.log.Warn(ctx, "unknown message type", "type", env.Type)
	}
}

// applyCiphertext decrypts one entry into the store. It returns false when
// the session had to shut down because the payload would not decrypt.
func (s *Session) applyCiphertext(ctx context.Context, ciphertext string, deleted bool, receivedAt int64) bool {
	plaintext, err := s.cipher.Decrypt(ciphertext)
	if err != nil {
		s.log.Error(ctx, "entry decryption failed", "error", err)
		s.close(protocol.CloseProtocolError, "decryption failed", err)
		return false
	}

	shape, err := geometry.UnmarshalShape(plaintext)
	if err != nil {
		s.log.Error(ctx, "entry decode failed", "error", err)
		s.close(protocol.CloseProtocolError, common.ErrMalformedMessage.Error(), err)
		return false
	}

	if deleted {
		s.store.RemoveRemote(shape.ID(), receivedAt)
	} else {
		s.store.ApplyRemote(shape, receivedAt)
	}
	return true
}

func (s *Session) setPeers(users []protocol.UserInfo) {
	s.peersMu.Lock()
	defer s.peersMu.Unlock()
	s.peers = make(map[string]protocol.UserInfo, len(users))
	for _, u := range users {
		if u.ID == s.userID {
			continue
		}
		s.peers[u.ID] = u
	}
}

func (s *Session) upsertPeer(u protocol.UserInfo) {
	if u.ID == s.userID {
		return
	}
	s.peersMu.Lock()
	defer s.peersMu.Unlock()
	s.peers[u.ID] = u
}

func (s *Session) removePeer(id string) {
	s.peersMu.Lock()
	defer s.peersMu.Unlock()
	delete(s.peers, id)
}
