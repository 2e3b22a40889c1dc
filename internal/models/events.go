package models

import "encoding/json"

// ClientEvent is one inbound websocket frame: an event name plus its
// payload, decoded lazily by the dispatcher.
type ClientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerEvent is one outbound websocket frame.
type ServerEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Inbound event names.
const (
	EvRegisterUser     = "register_user"
	EvJoinRoom         = "join_room"
	EvLeaveRoom        = "leave_room"
	EvSendMessage      = "send_message"
	EvTypingStart      = "typing_start"
	EvTypingEnd        = "typing_end"
	EvMessageDelivered = "message_delivered"
	EvMessagesRead     = "messages_read"
	EvMarkMessagesRead = "mark_messages_read"
	EvUserStatusChange = "user_status_change"
	EvEditMessage      = "edit_message"
	EvDeleteMessage    = "delete_message"
	EvLikeMessage      = "like_message"
	EvCallInitiate     = "call_initiate"
	EvCallAccept       = "call_accept"
	EvCallReject       = "call_reject"
	EvCallMissed       = "call_missed"
	EvCallEnd          = "call_end"
	EvCallToggleMedia  = "call_toggle_media"
	EvWebRTCOffer      = "webrtc_offer"
	EvWebRTCAnswer     = "webrtc_answer"
	EvWebRTCCandidate  = "webrtc_ice_candidate"
)

// Outbound event names.
const (
	EvMessageStatus          = "message_status"
	EvNewMessage             = "new_message"
	EvNewMessageNotification = "new_message_notification"
	EvPendingMessages        = "pending_messages"
	EvTypingIndicator        = "typing_indicator"
	EvUserStatus             = "user_status"
	EvMessagesAllRead        = "messages_all_read"
	EvMessageEdited          = "message_edited"
	EvMessageEditedError     = "message_edited_error"
	EvMessageDeleted         = "message_deleted"
	EvMessageDeletedError    = "message_deleted_error"
	EvMessageLiked           = "message_liked"
	EvMessageLikedError      = "message_liked_error"
	EvIncomingCall           = "incoming_call"
	EvCallFailed             = "call_failed"
	EvCallAccepted           = "call_accepted"
	EvCallRejected           = "call_rejected"
	EvCallEnded              = "call_ended"
	EvCallMediaToggled       = "call_media_toggled"
)

// --- Inbound payloads. Required fields carry validator tags; an event
// failing validation is dropped without a response (trusted client).

type RegisterUserPayload struct {
	UserID string `json:"userId" validate:"required"`
}

// RoomPayload is shared by join_room and leave_room.
type RoomPayload struct {
	UserID    string `json:"userId" validate:"required"`
	PartnerID string `json:"partnerId" validate:"required"`
}

type SendMessagePayload struct {
	Sender    string `json:"sender" validate:"required"`
	Receiver  string `json:"receiver" validate:"required"`
	Body      string `json:"message" validate:"required"`
	MessageID string `json:"messageId" validate:"required"`

	MessageType    string `json:"messageType"`
	FileURL        string `json:"fileURL"`
	FilePublicID   string `json:"filePublicId"`
	RepliedTo      string `json:"repliedTo"`
	RepliedMessage string `json:"repliedMessage"`
}

// TypingPayload is shared by typing_start and typing_end.
type TypingPayload struct {
	UserID     string `json:"userId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

type MessageDeliveredPayload struct {
	MessageID  string `json:"messageId" validate:"required"`
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

type MessagesReadPayload struct {
	MessageIDs []string `json:"messageIds" validate:"required,min=1"`
	SenderID   string   `json:"senderId" validate:"required"`
	ReceiverID string   `json:"receiverId" validate:"required"`
}

type MarkMessagesReadPayload struct {
	UserID    string `json:"userId" validate:"required"`
	PartnerID string `json:"partnerId" validate:"required"`
}

type UserStatusChangePayload struct {
	UserID   string `json:"userId" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=online offline"`
	LastSeen string `json:"lastSeen"`
}

type EditMessagePayload struct {
	MessageID string `json:"messageId" validate:"required"`
	Text      string `json:"text" validate:"required"`
	Sender    string `json:"sender" validate:"required"`
	Receiver  string `json:"receiver" validate:"required"`
}

// MessageRefPayload is shared by delete_message and like_message.
type MessageRefPayload struct {
	MessageID string `json:"messageId" validate:"required"`
	Sender    string `json:"sender" validate:"required"`
	Receiver  string `json:"receiver" validate:"required"`
}

type CallInitiatePayload struct {
	CallID     string `json:"callId"`
	CallerID   string `json:"callerId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
	CallType   string `json:"callType" validate:"required,oneof=audio video"`
}

type CallAcceptPayload struct {
	CallID     string `json:"callId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

type CallRejectPayload struct {
	CallID     string `json:"callId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
	Reason     string `json:"reason"`
}

type CallMissedPayload struct {
	CallID string `json:"callId" validate:"required"`
}

type CallEndPayload struct {
	CallID string `json:"callId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	Status string `json:"status"`
}

type CallToggleMediaPayload struct {
	CallID    string `json:"callId" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
	TargetID  string `json:"targetId" validate:"required"`
	MediaType string `json:"mediaType" validate:"required,oneof=audio video"`
	Enabled   *bool  `json:"enabled" validate:"required"`
}

// RelayEnvelope is the only part of a WebRTC frame the hub reads; the
// payload itself is routed untouched.
type RelayEnvelope struct {
	TargetID string `json:"targetId" validate:"required"`
}

// --- Outbound payloads.

type MessageStatusEvent struct {
	MessageID string        `json:"messageId"`
	Status    MessageStatus `json:"status"`
	Sender    string        `json:"sender,omitempty"`
	Receiver  string        `json:"receiver"`
}

type NewMessageNotification struct {
	RoomID     string `json:"roomId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	MessageID  string `json:"messageId"`
	Body       string `json:"message"`
}

type PendingMessagesEvent struct {
	SenderID      string `json:"senderId"`
	SenderName    string `json:"senderName"`
	Count         int    `json:"count"`
	LatestMessage string `json:"latestMessage"`
}

type TypingIndicatorEvent struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type UserStatusEvent struct {
	UserID   string `json:"userId"`
	Status   string `json:"status"`
	LastSeen string `json:"lastSeen,omitempty"`
}

type MessagesAllReadEvent struct {
	Reader string `json:"reader"`
	Sender string `json:"sender"`
}

type MessageEditedEvent struct {
	MessageID string `json:"messageId"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
}

// MessageRefEvent is shared by message_deleted and message_liked.
type MessageRefEvent struct {
	MessageID string `json:"messageId"`
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver"`
}

type MessageErrorEvent struct {
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

type IncomingCallEvent struct {
	CallID           string `json:"callId"`
	CallerID         string `json:"callerId"`
	CallerName       string `json:"callerName"`
	CallerFullName   string `json:"callerFullName"`
	CallerProfileURL string `json:"callerProfileURL"`
	CallType         string `json:"callType"`
}

type CallFailedEvent struct {
	CallID string `json:"callId,omitempty"`
	Reason string `json:"reason"`
}

type CallAcceptedEvent struct {
	CallID string `json:"callId"`
}

type CallRejectedEvent struct {
	CallID string `json:"callId"`
	Reason string `json:"reason"`
}

type CallEndedEvent struct {
	CallID string `json:"callId"`
	Reason string `json:"reason,omitempty"`
}

type CallMediaToggledEvent struct {
	CallID    string `json:"callId"`
	UserID    string `json:"userId"`
	MediaType string `json:"mediaType"`
	Enabled   bool   `json:"enabled"`
}
