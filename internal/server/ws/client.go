package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"livedraw/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	sendBufferSize = 64
)

// Client is one websocket connection. Before a room-join message arrives the
// client is anonymous; afterwards roomID and userID identify its membership.
type Client struct {
	handler *Handler
	conn    *websocket.Conn

	send chan *protocol.Envelope
	done chan struct{}

	roomID   string
	userID   string
	username string

	alive     atomic.Bool
	closeOnce sync.Once
	closeWith atomic.Value // closeIntent
}

// closeIntent carries the close frame the write pump should emit when the
// server terminates the connection.
type closeIntent struct {
	code   int
	reason string
}

// terminate asks the write pump to close the connection with the given code.
// Only the first caller wins; later calls are no-ops.
func (c *Client) terminate(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeWith.Store(closeIntent{code: code, reason: reason})
		close(c.done)
	})
}

func newClient(h *Handler, conn *websocket.Conn) *Client {
	c := &Client{
		handler: h,
		conn:    conn,
		send:    make(chan *protocol.Envelope, sendBufferSize),
		done:    make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

// Send queues an envelope for delivery. It never blocks: a message for a
// closed or hopelessly slow connection is dropped, the liveness sweep will
// take the connection down.
func (c *Client) Send(env *protocol.Envelope) {
	select {
	case <-c.done:
	case c.send <- env:
	default:
	}
}

// readPump consumes inbound messages until the connection fails or closes,
// then runs the disconnect path exactly once.
func (c *Client) readPump(ctx context.Context) {
	defer c.handler.disconnect(ctx, c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(2 * c.handler.heartbeat))
	c.conn.SetPongHandler(func(string) error {
		c.alive.Store(true)
		c.conn.SetReadDeadline(time.Now().Add(2 * c.handler.heartbeat))
		return nil
	})

	for {
		var env protocol.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.handler.log.Warn(ctx, "websocket read failed", "error", err)
			}
			return
		}
		c.handler.dispatch(ctx, c, &env)
	}
}

// writePump owns all writes to the connection: queued envelopes, liveness
// pings and the final close frame.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.handler.heartbeat)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.handler.log.Warn(ctx, "websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			// a connection that never answered the previous probe is dead
			if !c.alive.Swap(false) {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(c.closeCode(), c.closeReason()))
			return
		}
	}
}

func (c *Client) closeCode() int {
	if v := c.closeWith.Load(); v != nil {
		return v.(closeIntent).code
	}
	return protocol.CloseNormal
}

func (c *Client) closeReason() string {
	if v := c.closeWith.Load(); v != nil {
		return v.(closeIntent).reason
	}
	return ""
}
