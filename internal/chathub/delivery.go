package chathub

import (
	"log"
	"time"

	"chatwave/backend/internal/models"
	"chatwave/backend/internal/storage"

	"github.com/samber/lo"
)

// DeliveryService drives the message status machine
// (sent -> delivered -> read) and the notifications that go with each
// transition. Forward-only transitions are enforced in storage, so a
// replayed or racing signal changes nothing and emits nothing.
type DeliveryService struct {
	store storage.Storage
	bc    Broadcaster
}

func NewDeliveryService(store storage.Storage, bc Broadcaster) *DeliveryService {
	return &DeliveryService{store: store, bc: bc}
}

// HandleSend persists a new message and fans it out. The message lands
// as "sent" and advances straight to "delivered" when the receiver is
// online. A receiver who is online but looking at another conversation
// gets a targeted notification with the sender's name and a preview.
func (d *DeliveryService) HandleSend(p models.SendMessagePayload) {
	roomID := RoomKey(p.Sender, p.Receiver)

	msg := &models.Message{
		RoomID:         roomID,
		MessageID:      p.MessageID,
		SenderID:       p.Sender,
		ReceiverID:     p.Receiver,
		Body:           p.Body,
		Type:           p.MessageType,
		FileURL:        p.FileURL,
		FilePublicID:   p.FilePublicID,
		RepliedTo:      p.RepliedTo,
		RepliedMessage: p.RepliedMessage,
		Status:         models.StatusSent,
	}
	if err := d.store.CreateMessage(msg); err != nil {
		log.Printf("ERROR: failed to save message %s: %v", p.MessageID, err)
		return
	}

	receiverOnline := d.bc.IsOnline(p.Receiver)
	if receiverOnline {
		changed, err := d.store.AdvanceMessageStatus(p.MessageID, models.StatusDelivered)
		if err != nil {
			log.Printf("ERROR: failed to mark %s delivered: %v", p.MessageID, err)
		} else if changed {
			msg.Status = models.StatusDelivered
		}
	}

	d.bc.ToRoom(roomID, models.ServerEvent{Type: models.EvNewMessage, Data: msg})

	if receiverOnline && !d.bc.InRoom(p.Receiver, roomID) {
		info, err := d.store.DisplayInfoByID(p.Sender)
		if err != nil {
			log.Printf("ERROR: failed to load sender %s for notification: %v", p.Sender, err)
			return
		}
		d.bc.ToUser(p.Receiver, models.ServerEvent{
			Type: models.EvNewMessageNotification,
			Data: models.NewMessageNotification{
				RoomID:     roomID,
				SenderID:   p.Sender,
				SenderName: info.Username,
				MessageID:  p.MessageID,
				Body:       p.Body,
			},
		})
	}
}

// HandleDelivered applies an explicit client delivery ack. Emits only
// when the row actually advanced.
func (d *DeliveryService) HandleDelivered(p models.MessageDeliveredPayload) {
	changed, err := d.store.AdvanceMessageStatus(p.MessageID, models.StatusDelivered)
	if err != nil {
		log.Printf("ERROR: failed to mark %s delivered: %v", p.MessageID, err)
		return
	}
	if !changed {
		return
	}

	d.bc.ToRoom(RoomKey(p.SenderID, p.ReceiverID), models.ServerEvent{
		Type: models.EvMessageStatus,
		Data: models.MessageStatusEvent{
			MessageID: p.MessageID,
			Status:    models.StatusDelivered,
			Sender:    p.SenderID,
			Receiver:  p.ReceiverID,
		},
	})
}

// HandleRead marks an explicit id set read, emitting one status event
// per message that actually transitioned.
func (d *DeliveryService) HandleRead(p models.MessagesReadPayload) {
	updated, err := d.store.AdvanceMessagesStatus(p.MessageIDs, models.StatusRead)
	if err != nil {
		log.Printf("ERROR: failed to mark messages read: %v", err)
		return
	}

	roomID := RoomKey(p.SenderID, p.ReceiverID)
	for _, messageID := range updated {
		d.bc.ToRoom(roomID, models.ServerEvent{
			Type: models.EvMessageStatus,
			Data: models.MessageStatusEvent{
				MessageID: messageID,
				Status:    models.StatusRead,
				Sender:    p.SenderID,
				Receiver:  p.ReceiverID,
			},
		})
	}
}

// HandleMarkRead marks a whole conversation read for the reader. One
// aggregate event goes to the room when anything changed; the partner
// gets a targeted copy when online but looking elsewhere.
func (d *DeliveryService) HandleMarkRead(p models.MarkMessagesReadPayload) {
	count, err := d.store.MarkConversationRead(p.UserID, p.PartnerID)
	if err != nil {
		log.Printf("ERROR: failed to mark conversation read for %s: %v", p.UserID, err)
		return
	}

	roomID := RoomKey(p.UserID, p.PartnerID)
	ev := models.ServerEvent{Type: models.EvMessagesAllRead, Data: models.MessagesAllReadEvent{
		Reader: p.UserID,
		Sender: p.PartnerID,
	}}

	if count > 0 {
		d.bc.ToRoom(roomID, ev)
	}
	if d.bc.IsOnline(p.PartnerID) && !d.bc.InRoom(p.PartnerID, roomID) {
		d.bc.ToUser(p.PartnerID, ev)
	}
}

// ReconcilePending runs on register_user. Everything still "sent" to the
// reconnecting user becomes "delivered"; each sender who is online gets
// a per-message status notice, and the user gets one aggregated
// pending_messages notice per distinct sender so a long absence does not
// turn into a notification flood.
func (d *DeliveryService) ReconcilePending(userID string) {
	pending, err := d.store.PendingForReceiver(userID)
	if err != nil {
		log.Printf("ERROR: failed to load pending messages for %s: %v", userID, err)
		return
	}
	if len(pending) == 0 {
		return
	}

	ids := lo.Map(pending, func(m models.Message, _ int) string { return m.MessageID })
	if _, err := d.store.AdvanceMessagesStatus(ids, models.StatusDelivered); err != nil {
		log.Printf("ERROR: failed to mark pending messages delivered for %s: %v", userID, err)
		return
	}

	for _, msg := range pending {
		d.bc.ToUser(msg.SenderID, models.ServerEvent{
			Type: models.EvMessageStatus,
			Data: models.MessageStatusEvent{
				MessageID: msg.MessageID,
				Status:    models.StatusDelivered,
				Receiver:  userID,
			},
		})
	}

	bySender := lo.GroupBy(pending, func(m models.Message) string { return m.SenderID })
	for senderID, msgs := range bySender {
		senderName := senderID
		if info, err := d.store.DisplayInfoByID(senderID); err != nil {
			log.Printf("WARNING: failed to load sender %s for pending notice: %v", senderID, err)
		} else {
			senderName = info.Username
		}

		d.bc.ToUser(userID, models.ServerEvent{
			Type: models.EvPendingMessages,
			Data: models.PendingMessagesEvent{
				SenderID:      senderID,
				SenderName:    senderName,
				Count:         len(msgs),
				LatestMessage: msgs[len(msgs)-1].Body,
			},
		})
	}
}

// HandleJoin finishes a join_room: the partner's undelivered messages
// become delivered (with a status event each), the room learns the
// joiner is online, and the joiner learns the partner's status.
func (d *DeliveryService) HandleJoin(userID, partnerID string) {
	roomID := RoomKey(userID, partnerID)

	undelivered, err := d.store.UndeliveredBetween(userID, partnerID)
	if err != nil {
		log.Printf("ERROR: failed to load undelivered messages for %s: %v", userID, err)
		return
	}

	count, err := d.store.MarkConversationDelivered(userID, partnerID)
	if err != nil {
		log.Printf("ERROR: failed to mark conversation delivered for %s: %v", userID, err)
		return
	}

	if count > 0 {
		for _, msg := range undelivered {
			d.bc.ToRoom(roomID, models.ServerEvent{
				Type: models.EvMessageStatus,
				Data: models.MessageStatusEvent{
					MessageID: msg.MessageID,
					Status:    models.StatusDelivered,
					Sender:    msg.SenderID,
					Receiver:  msg.ReceiverID,
				},
			})
		}
	}

	d.bc.ToRoom(roomID, models.ServerEvent{Type: models.EvUserStatus, Data: models.UserStatusEvent{
		UserID: userID,
		Status: "online",
	}})

	if d.bc.IsOnline(partnerID) {
		d.bc.ToUser(userID, models.ServerEvent{Type: models.EvUserStatus, Data: models.UserStatusEvent{
			UserID: partnerID,
			Status: "online",
		}})
		return
	}

	lastSeen := time.Now()
	if ls, err := d.store.LastSeen(partnerID); err != nil {
		log.Printf("WARNING: failed to load last seen for %s: %v", partnerID, err)
	} else if ls != nil {
		lastSeen = *ls
	}
	d.bc.ToUser(userID, models.ServerEvent{Type: models.EvUserStatus, Data: models.UserStatusEvent{
		UserID:   partnerID,
		Status:   "offline",
		LastSeen: lastSeen.Format(time.RFC3339),
	}})
}

// HandleEdit replaces a message body. An unknown id answers the editor
// with an error event; success is broadcast to the room.
func (d *DeliveryService) HandleEdit(c Client, p models.EditMessagePayload) {
	ok, err := d.store.EditMessage(p.MessageID, p.Text)
	if err != nil {
		log.Printf("ERROR: failed to edit message %s: %v", p.MessageID, err)
	}
	if !ok {
		d.bc.ToClient(c, models.ServerEvent{Type: models.EvMessageEditedError, Data: models.MessageErrorEvent{
			MessageID: p.MessageID,
			Error:     "Message not found",
		}})
		return
	}

	d.bc.ToRoom(RoomKey(p.Sender, p.Receiver), models.ServerEvent{
		Type: models.EvMessageEdited,
		Data: models.MessageEditedEvent{
			MessageID: p.MessageID,
			Text:      p.Text,
			Sender:    p.Sender,
			Receiver:  p.Receiver,
		},
	})
}

// HandleDelete flags a message deleted and blanks its body.
func (d *DeliveryService) HandleDelete(c Client, p models.MessageRefPayload) {
	ok, err := d.store.DeleteMessage(p.MessageID)
	if err != nil {
		log.Printf("ERROR: failed to delete message %s: %v", p.MessageID, err)
	}
	if !ok {
		d.bc.ToClient(c, models.ServerEvent{Type: models.EvMessageDeletedError, Data: models.MessageErrorEvent{
			MessageID: p.MessageID,
			Error:     "Message not found",
		}})
		return
	}

	d.bc.ToRoom(RoomKey(p.Sender, p.Receiver), models.ServerEvent{
		Type: models.EvMessageDeleted,
		Data: models.MessageRefEvent{
			MessageID: p.MessageID,
			Sender:    p.Sender,
			Receiver:  p.Receiver,
		},
	})
}

// HandleLike flags a message liked.
func (d *DeliveryService) HandleLike(c Client, p models.MessageRefPayload) {
	ok, err := d.store.LikeMessage(p.MessageID)
	if err != nil {
		log.Printf("ERROR: failed to like message %s: %v", p.MessageID, err)
	}
	if !ok {
		d.bc.ToClient(c, models.ServerEvent{Type: models.EvMessageLikedError, Data: models.MessageErrorEvent{
			MessageID: p.MessageID,
			Error:     "Message not found",
		}})
		return
	}

	d.bc.ToRoom(RoomKey(p.Sender, p.Receiver), models.ServerEvent{
		Type: models.EvMessageLiked,
		Data: models.MessageRefEvent{
			MessageID: p.MessageID,
			Sender:    p.Sender,
			Receiver:  p.Receiver,
		},
	})
}
