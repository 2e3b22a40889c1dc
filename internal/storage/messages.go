package storage

import (
	"errors"

	"chatwave/backend/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CreateMessage persists a new message row.
func (s *Service) CreateMessage(msg *models.Message) error {
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	if msg.Status == "" {
		msg.Status = models.StatusSent
	}
	return s.DB.Create(msg).Error
}

// FindMessageByID looks a message up by its client-generated identifier.
// Returns nil without error when no row matches.
func (s *Service) FindMessageByID(messageID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.Where("message_id = ?", messageID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// MessagesByRoomPaged returns one page of a room's history, newest first.
func (s *Service) MessagesByRoomPaged(roomID string, page, limit int) ([]models.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var msgs []models.Message
	err := s.DB.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// UndeliveredBetween returns the still-"sent" messages from senderID to
// receiverID, oldest first.
func (s *Service) UndeliveredBetween(receiverID, senderID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.Where("receiver_id = ? AND sender_id = ? AND status = ?",
		receiverID, senderID, models.StatusSent).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// PendingForReceiver returns every "sent" message addressed to the user,
// regardless of sender, oldest first. Used by reconnect reconciliation.
func (s *Service) PendingForReceiver(receiverID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.Where("receiver_id = ? AND status = ?", receiverID, models.StatusSent).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// priorStatuses lists the states a message may hold immediately before
// moving to target: everything ranked strictly below it. The guard keeps
// every transition forward-only; an unknown target ranks lowest and
// yields nothing, so advancing to it is a no-op.
func priorStatuses(target models.MessageStatus) []models.MessageStatus {
	var prior []models.MessageStatus
	for _, s := range []models.MessageStatus{models.StatusSent, models.StatusDelivered} {
		if s.Rank() < target.Rank() {
			prior = append(prior, s)
		}
	}
	return prior
}

// AdvanceMessageStatus moves a single message forward to status. Reports
// whether a row actually changed; a replay or a regression attempt is a
// no-op.
func (s *Service) AdvanceMessageStatus(messageID string, status models.MessageStatus) (bool, error) {
	prior := priorStatuses(status)
	if prior == nil {
		return false, nil
	}

	res := s.DB.Model(&models.Message{}).
		Where("message_id = ? AND status IN ?", messageID, prior).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdvanceMessagesStatus moves a set of messages forward to status and
// returns the ids whose rows actually changed, so callers emit exactly
// one status event per real transition.
func (s *Service) AdvanceMessagesStatus(messageIDs []string, status models.MessageStatus) ([]string, error) {
	prior := priorStatuses(status)
	if prior == nil || len(messageIDs) == 0 {
		return nil, nil
	}

	var eligible []string
	if err := s.DB.Model(&models.Message{}).
		Where("message_id = ANY(?) AND status IN ?", pq.Array(messageIDs), prior).
		Pluck("message_id", &eligible).Error; err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	if err := s.DB.Model(&models.Message{}).
		Where("message_id = ANY(?)", pq.Array(eligible)).
		Update("status", status).Error; err != nil {
		return nil, err
	}
	return eligible, nil
}

// MarkConversationDelivered bulk-advances senderID -> receiverID "sent"
// messages to "delivered" and returns how many rows changed.
func (s *Service) MarkConversationDelivered(receiverID, senderID string) (int64, error) {
	res := s.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND status = ?",
			receiverID, senderID, models.StatusSent).
		Update("status", models.StatusDelivered)
	return res.RowsAffected, res.Error
}

// MarkConversationRead bulk-advances everything senderID sent to
// receiverID that is not yet read.
func (s *Service) MarkConversationRead(receiverID, senderID string) (int64, error) {
	res := s.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND status IN ?",
			receiverID, senderID,
			[]models.MessageStatus{models.StatusSent, models.StatusDelivered}).
		Update("status", models.StatusRead)
	return res.RowsAffected, res.Error
}

// mutateMessage applies updates to one message by wire id and reports
// whether the message exists.
func (s *Service) mutateMessage(messageID string, updates map[string]any) (bool, error) {
	res := s.DB.Model(&models.Message{}).
		Where("message_id = ?", messageID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// EditMessage replaces the body and flags the message as edited.
func (s *Service) EditMessage(messageID, text string) (bool, error) {
	return s.mutateMessage(messageID, map[string]any{
		"body":      text,
		"is_edited": true,
	})
}

// DeleteMessage blanks the body and flags the message as deleted. The
// row survives so the conversation keeps its placeholder.
func (s *Service) DeleteMessage(messageID string) (bool, error) {
	return s.mutateMessage(messageID, map[string]any{
		"body":       "deleted",
		"is_deleted": true,
	})
}

// LikeMessage flags the message as liked.
func (s *Service) LikeMessage(messageID string) (bool, error) {
	return s.mutateMessage(messageID, map[string]any{"is_liked": true})
}

// chatRoomSummarySQL builds the conversation list in one round trip: the
// newest message per room the user participates in, the partner's
// display fields, and the unread count for that room.
const chatRoomSummarySQL = `
SELECT
    latest.room_id                 AS room_id,
    latest.partner_id              AS partner_id,
    u.username                     AS username,
    u.full_name                    AS full_name,
    u.profile_url                  AS profile_url,
    latest.body                    AS latest_message,
    latest.message_id              AS latest_message_id,
    latest.created_at              AS latest_message_time,
    latest.sender_id               AS latest_sender_id,
    CASE WHEN latest.sender_id = ? THEN latest.status END AS latest_status,
    unread.unread_count            AS unread_count
FROM (
    SELECT DISTINCT ON (room_id)
        room_id,
        CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id,
        body, message_id, created_at, sender_id, status
    FROM messages
    WHERE (sender_id = ? OR receiver_id = ?) AND deleted_at IS NULL
    ORDER BY room_id, created_at DESC
) latest
JOIN users u ON u.id = latest.partner_id
LEFT JOIN LATERAL (
    SELECT count(*) AS unread_count
    FROM messages
    WHERE room_id = latest.room_id
      AND receiver_id = ?
      AND status IN ('sent', 'delivered')
      AND deleted_at IS NULL
) unread ON true
ORDER BY latest.created_at DESC`

// ChatRoomSummaries returns the user's conversation list, most recently
// active first.
func (s *Service) ChatRoomSummaries(userID string) ([]models.ChatRoomSummary, error) {
	var rooms []models.ChatRoomSummary
	err := s.DB.Raw(chatRoomSummarySQL, userID, userID, userID, userID, userID).
		Scan(&rooms).Error
	return rooms, err
}
