package chathub

import (
	"encoding/json"
	"log"
	"time"

	"chatwave/backend/internal/models"
)

// HandleEvent routes one inbound event to its handler. A panic inside a
// handler is contained here so no event can take down the connection
// loop or any other connection.
func (h *Hub) HandleEvent(c Client, ev models.ClientEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: recovered handling %s from %s: %v", ev.Type, c.GetUserID(), r)
		}
	}()

	switch ev.Type {
	case models.EvRegisterUser:
		var p models.RegisterUserPayload
		if !h.bind(ev, &p) {
			return
		}
		c.SetUserID(p.UserID)
		h.Presence.SetOnline(p.UserID, c)
		h.Delivery.ReconcilePending(p.UserID)

	case models.EvJoinRoom:
		var p models.RoomPayload
		if !h.bind(ev, &p) {
			return
		}
		c.SetUserID(p.UserID)
		h.Presence.SetOnline(p.UserID, c)
		h.Rooms.Join(RoomKey(p.UserID, p.PartnerID), c)
		h.Delivery.HandleJoin(p.UserID, p.PartnerID)

	case models.EvLeaveRoom:
		var p models.RoomPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Rooms.Leave(RoomKey(p.UserID, p.PartnerID), c)

	case models.EvSendMessage:
		var p models.SendMessagePayload
		if !h.bind(ev, &p) {
			return
		}
		h.Delivery.HandleSend(p)

	case models.EvTypingStart:
		var p models.TypingPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Typing.Start(p)

	case models.EvTypingEnd:
		var p models.TypingPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Typing.End(p)

	case models.EvMessageDelivered:
		var p models.MessageDeliveredPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Delivery.HandleDelivered(p)

	case models.EvMessagesRead:
		var p models.MessagesReadPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Delivery.HandleRead(p)

	case models.EvMarkMessagesRead:
		var p models.MarkMessagesReadPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Delivery.HandleMarkRead(p)

	case models.EvUserStatusChange:
		var p models.UserStatusChangePayload
		if !h.bind(ev, &p) {
			return
		}
		h.handleStatusChange(c, p)

	case models.EvEditMessage:
		var p models.EditMessagePayload
		if !h.bind(ev, &p) {
			return
		}
		h.Delivery.HandleEdit(c, p)

	case models.EvDeleteMessage:
		var p models.MessageRefPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Delivery.HandleDelete(c, p)

	case models.EvLikeMessage:
		var p models.MessageRefPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Delivery.HandleLike(c, p)

	case models.EvCallInitiate:
		var p models.CallInitiatePayload
		if !h.bind(ev, &p) {
			return
		}
		h.Calls.Initiate(c, p)

	case models.EvCallAccept:
		var p models.CallAcceptPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Calls.Accept(p)

	case models.EvCallReject:
		var p models.CallRejectPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Calls.Reject(p)

	case models.EvCallMissed:
		var p models.CallMissedPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Calls.Missed(p)

	case models.EvCallEnd:
		var p models.CallEndPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Calls.End(p)

	case models.EvCallToggleMedia:
		var p models.CallToggleMediaPayload
		if !h.bind(ev, &p) {
			return
		}
		h.Calls.ToggleMedia(p)

	case models.EvWebRTCOffer, models.EvWebRTCAnswer, models.EvWebRTCCandidate:
		var env models.RelayEnvelope
		if !h.bind(ev, &env) {
			return
		}
		h.Calls.Relay(ev.Type, env.TargetID, ev.Data)

	default:
		log.Printf("unknown event type %q from %s", ev.Type, c.GetUserID())
	}
}

// bind decodes and validates an inbound payload. Malformed or incomplete
// events are dropped silently; the client is first-party and gets no
// error response.
func (h *Hub) bind(ev models.ClientEvent, v any) bool {
	if err := json.Unmarshal(ev.Data, v); err != nil {
		log.Printf("invalid %s payload: %v", ev.Type, err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		log.Printf("invalid %s payload: %v", ev.Type, err)
		return false
	}
	return true
}

// handleStatusChange processes an explicit online/offline signal from
// the client. Going offline is broadcast to everyone together with the
// client-supplied lastSeen.
func (h *Hub) handleStatusChange(c Client, p models.UserStatusChangePayload) {
	if p.Status == "offline" {
		lastSeen := p.LastSeen
		at, err := time.Parse(time.RFC3339, lastSeen)
		if err != nil {
			at = time.Now()
			lastSeen = at.Format(time.RFC3339)
		}
		if err := h.Store.UpdateLastSeen(p.UserID, at); err != nil {
			log.Printf("ERROR: failed to update last seen for %s: %v", p.UserID, err)
		}

		h.Presence.RemoveIfCurrent(p.UserID, c)

		h.ToAll(models.ServerEvent{Type: models.EvUserStatus, Data: models.UserStatusEvent{
			UserID:   p.UserID,
			Status:   "offline",
			LastSeen: lastSeen,
		}})
		return
	}

	c.SetUserID(p.UserID)
	h.Presence.SetOnline(p.UserID, c)
	h.ToAll(models.ServerEvent{Type: models.EvUserStatus, Data: models.UserStatusEvent{
		UserID: p.UserID,
		Status: "online",
	}})
}
