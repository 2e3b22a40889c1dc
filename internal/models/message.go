package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageStatus is the delivery lifecycle stage of a message as seen by
// the recipient's client. Transitions only ever move forward.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

// Rank orders statuses along the sent -> delivered -> read lifecycle.
// An unknown status ranks below "sent" so it never wins a comparison.
func (s MessageStatus) Rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return 0
}

// Message types. "call" rows are placeholder entries a client renders
// inline in the conversation after a call ends.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeAudio = "audio"
	MessageTypeCall  = "call"
)

// Message is a persisted chat message in PostgreSQL.
// The embedded gorm.Model provides the surrogate key and timestamps;
// MessageID is the client-generated identifier used on the wire.
type Message struct {
	gorm.Model `json:"-"`

	RoomID     string `gorm:"not null;index:idx_room_created" json:"roomId"`
	MessageID  string `gorm:"uniqueIndex;not null" json:"messageId"`
	SenderID   string `gorm:"not null;index" json:"sender"`
	ReceiverID string `gorm:"not null;index:idx_receiver_status" json:"receiver"`
	Body       string `gorm:"type:text;not null" json:"message"`

	Type         string `gorm:"not null;default:text" json:"messageType"`
	FileURL      string `json:"fileURL,omitempty"`
	FilePublicID string `json:"filePublicId,omitempty"`

	RepliedTo      string `json:"repliedTo,omitempty"`
	RepliedMessage string `json:"repliedMessage,omitempty"`

	Status MessageStatus `gorm:"not null;default:sent;index:idx_receiver_status" json:"status"`

	IsLiked   bool `json:"isLiked"`
	IsEdited  bool `json:"isEdited"`
	IsDeleted bool `json:"isDeleted"`
}

// ChatRoomSummary is one row of the conversation list: the partner, the
// latest message in that room and how many of its messages are unread.
// Produced by a raw aggregate query, never persisted.
type ChatRoomSummary struct {
	RoomID            string    `json:"chatRoomId"`
	PartnerID         string    `json:"userId"`
	Username          string    `json:"username"`
	FullName          string    `json:"fullName"`
	ProfileURL        string    `json:"profileURL"`
	LatestMessage     string    `json:"latestMessage"`
	LatestMessageID   string    `json:"messageId"`
	LatestMessageTime time.Time `json:"latestMessageTime"`
	LatestSenderID    string    `json:"sender"`
	LatestStatus      *string   `json:"latestMessageStatus"`
	UnreadCount       int       `json:"unreadCount"`
}
