package chathub

import (
	"sync"
	"time"

	"chatwave/backend/internal/models"
)

// DefaultTypingTimeout is the debounce window after which a typing
// indicator clears on its own.
const DefaultTypingTimeout = 5 * time.Second

// TypingCoordinator broadcasts typing indicators with a per-(typist,
// peer) auto-clear timer. At most one timer is pending per key, so a
// stream of typing_start events keeps pushing a single deadline instead
// of stacking timers, and no indicator is ever left stuck on.
type TypingCoordinator struct {
	bc      Broadcaster
	timeout time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTypingCoordinator(bc Broadcaster, timeout time.Duration) *TypingCoordinator {
	if timeout <= 0 {
		timeout = DefaultTypingTimeout
	}
	return &TypingCoordinator{
		bc:      bc,
		timeout: timeout,
		timers:  make(map[string]*time.Timer),
	}
}

func typingKey(userID, receiverID string) string {
	return userID + "_" + receiverID
}

// Start broadcasts "is typing" to the peer and (re)arms the auto-clear
// timer for this pair.
func (t *TypingCoordinator) Start(p models.TypingPayload) {
	key := typingKey(p.UserID, p.ReceiverID)
	roomID := RoomKey(p.UserID, p.ReceiverID)

	t.mu.Lock()
	if timer, ok := t.timers[key]; ok {
		// Stop may return false when the timer has already fired; its
		// closure then blocks on t.mu and must find itself replaced.
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(t.timeout, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.timers[key] != timer {
			return
		}
		delete(t.timers, key)

		t.bc.ToRoomExcept(roomID, p.UserID, models.ServerEvent{
			Type: models.EvTypingIndicator,
			Data: models.TypingIndicatorEvent{UserID: p.UserID, IsTyping: false},
		})
	})
	t.timers[key] = timer
	t.mu.Unlock()

	t.bc.ToRoomExcept(roomID, p.UserID, models.ServerEvent{
		Type: models.EvTypingIndicator,
		Data: models.TypingIndicatorEvent{UserID: p.UserID, IsTyping: true},
	})
}

// End cancels any pending auto-clear and broadcasts "stopped typing"
// immediately.
func (t *TypingCoordinator) End(p models.TypingPayload) {
	key := typingKey(p.UserID, p.ReceiverID)

	t.mu.Lock()
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
	t.mu.Unlock()

	t.bc.ToRoomExcept(RoomKey(p.UserID, p.ReceiverID), p.UserID, models.ServerEvent{
		Type: models.EvTypingIndicator,
		Data: models.TypingIndicatorEvent{UserID: p.UserID, IsTyping: false},
	})
}
