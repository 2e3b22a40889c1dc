package chathub

import (
	"log"
	"time"

	"chatwave/backend/internal/models"
	"chatwave/backend/internal/storage"

	"github.com/go-playground/validator/v10"
)

// Broadcaster is the dispatch capability handed to the domain services.
// Services never touch the presence table or the room registry directly;
// everything outbound goes through here.
type Broadcaster interface {
	// ToRoom sends the event to every connection subscribed to the room.
	ToRoom(roomID string, ev models.ServerEvent)
	// ToRoomExcept sends to the room, skipping connections bound to the
	// given user.
	ToRoomExcept(roomID, exceptUserID string, ev models.ServerEvent)
	// ToUser sends the event to the user's current connection. Reports
	// false when the user is offline.
	ToUser(userID string, ev models.ServerEvent) bool
	// ToClient sends the event to one specific connection.
	ToClient(c Client, ev models.ServerEvent)
	// ToAll sends the event to every connected user.
	ToAll(ev models.ServerEvent)

	IsOnline(userID string) bool
	// InRoom reports whether the user's current connection is subscribed
	// to the room.
	InRoom(userID, roomID string) bool
}

// Hub owns the presence table and the room registry, routes outbound
// events, and dispatches inbound events to the domain services.
type Hub struct {
	Presence *Presence
	Rooms    *RoomRegistry
	Store    storage.Storage

	Delivery *DeliveryService
	Typing   *TypingCoordinator
	Calls    *CallService

	validate *validator.Validate
}

// NewHub wires the hub and its services. typingTimeout is the debounce
// window after which a typing indicator auto-clears.
func NewHub(store storage.Storage, typingTimeout time.Duration) *Hub {
	h := &Hub{
		Presence: NewPresence(),
		Rooms:    NewRoomRegistry(),
		Store:    store,
		validate: validator.New(),
	}
	h.Delivery = NewDeliveryService(store, h)
	h.Typing = NewTypingCoordinator(h, typingTimeout)
	h.Calls = NewCallService(store, h)
	return h
}

// trySend queues the event on a client's channel without ever blocking
// the caller. Events for a slow or closing client are dropped; the
// reconnect reconciliation recovers anything that matters.
func (h *Hub) trySend(c Client, ev models.ServerEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("dropped %s event for closed connection of %s", ev.Type, c.GetUserID())
		}
	}()

	select {
	case c.GetSendChannel() <- ev:
	default:
		log.Printf("send buffer full, dropped %s event for %s", ev.Type, c.GetUserID())
	}
}

func (h *Hub) ToRoom(roomID string, ev models.ServerEvent) {
	for _, c := range h.Rooms.Members(roomID) {
		h.trySend(c, ev)
	}
}

func (h *Hub) ToRoomExcept(roomID, exceptUserID string, ev models.ServerEvent) {
	for _, c := range h.Rooms.Members(roomID) {
		if c.GetUserID() == exceptUserID {
			continue
		}
		h.trySend(c, ev)
	}
}

func (h *Hub) ToUser(userID string, ev models.ServerEvent) bool {
	c, ok := h.Presence.Get(userID)
	if !ok {
		return false
	}
	h.trySend(c, ev)
	return true
}

func (h *Hub) ToClient(c Client, ev models.ServerEvent) {
	h.trySend(c, ev)
}

func (h *Hub) ToAll(ev models.ServerEvent) {
	for _, c := range h.Presence.All() {
		h.trySend(c, ev)
	}
}

func (h *Hub) IsOnline(userID string) bool { return h.Presence.IsOnline(userID) }

func (h *Hub) InRoom(userID, roomID string) bool {
	c, ok := h.Presence.Get(userID)
	if !ok {
		return false
	}
	return h.Rooms.Contains(roomID, c)
}

// Disconnect tears a connection down: room subscriptions go away, the
// send channel is closed so the write pump exits without waiting out a
// ping cycle, and if this connection is still the user's current one,
// the user goes offline with lastSeen stamped now. A connection that
// was already superseded leaves the newer presence entry untouched.
func (h *Hub) Disconnect(c Client) {
	// closed last, after the presence entry is gone; trySend tolerates
	// the remaining window
	defer c.Close()

	h.Rooms.LeaveAll(c)

	userID := c.GetUserID()
	if userID == "" {
		return
	}
	if !h.Presence.RemoveIfCurrent(userID, c) {
		return
	}

	now := time.Now()
	if err := h.Store.UpdateLastSeen(userID, now); err != nil {
		log.Printf("ERROR: failed to update last seen for %s: %v", userID, err)
	}

	h.ToAll(models.ServerEvent{Type: models.EvUserStatus, Data: models.UserStatusEvent{
		UserID:   userID,
		Status:   "offline",
		LastSeen: now.Format(time.RFC3339),
	}})
}
