package session

import (
	"sync"
	"time"

	"livedraw/internal/geometry"
)

const (
	cursorMinInterval = 16 * time.Millisecond
	cursorMinDistance = 2.0
	cursorTrailing    = 10 * time.Millisecond
)

// cursorThrottle limits how often cursor positions go on the wire: a
// position is forwarded immediately when enough time and distance have
// passed since the last send, otherwise it is parked and flushed by a short
// trailing timer so the final resting position is never lost.
type cursorThrottle struct {
	mu       sync.Mutex
	send     func(geometry.Point)
	now      func() time.Time
	lastSent time.Time
	lastPos  geometry.Point
	hasSent  bool
	pending  *geometry.Point
	timer    *time.Timer
}

func newCursorThrottle(send func(geometry.Point)) *cursorThrottle {
	return &cursorThrottle{send: send, now: time.Now}
}

// Offer submits a new cursor position.
func (t *cursorThrottle) Offer(p geometry.Point) {
	t.mu.Lock()

	if t.hasSent && p.Dist(t.lastPos) < cursorMinDistance {
		t.mu.Unlock()
		return
	}

	if !t.hasSent || t.now().Sub(t.lastSent) >= cursorMinInterval {
		t.markSentLocked(p)
		t.mu.Unlock()
		t.send(p)
		return
	}

	// too soon: park the position and (re)arm the trailing flush
	pos := p
	t.pending = &pos
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(cursorTrailing, t.flush)
	t.mu.Unlock()
}

// Stop cancels any pending trailing flush.
func (t *cursorThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = nil
}

func (t *cursorThrottle) flush() {
	t.mu.Lock()
	if t.pending == nil {
		t.mu.Unlock()
		return
	}
	p := *t.pending
	t.pending = nil
	t.markSentLocked(p)
	t.mu.Unlock()
	t.send(p)
}

func (t *cursorThrottle) markSentLocked(p geometry.Point) {
	t.lastSent = t.now()
	t.lastPos = p
	t.hasSent = true
}
