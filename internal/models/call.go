package models

import (
	"time"

	"gorm.io/gorm"
)

// CallStatus is the lifecycle state of a call record. "ringing" and
// "active" are the only non-terminal states.
type CallStatus string

const (
	CallRinging  CallStatus = "ringing"
	CallActive   CallStatus = "active"
	CallEnded    CallStatus = "ended"
	CallRejected CallStatus = "rejected"
	CallMissed   CallStatus = "missed"
)

// Terminal reports whether no further transition is permitted.
func (s CallStatus) Terminal() bool {
	return s == CallEnded || s == CallRejected || s == CallMissed
}

// Call types.
const (
	CallTypeAudio = "audio"
	CallTypeVideo = "video"
)

// Call is a persisted call record. Caller display fields are captured at
// initiation time so call history renders without a user join.
type Call struct {
	gorm.Model `json:"-"`

	CallID     string `gorm:"uniqueIndex;not null" json:"callId"`
	CallerID   string `gorm:"not null;index:idx_caller_created" json:"callerId"`
	ReceiverID string `gorm:"not null;index:idx_receiver_created" json:"receiverId"`

	CallerName       string `gorm:"not null" json:"callerName"`
	CallerFullName   string `json:"callerFullName"`
	CallerProfileURL string `json:"callerProfileURL"`

	CallType string     `gorm:"not null" json:"callType"`
	Status   CallStatus `gorm:"not null;default:ringing" json:"status"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// OtherParty returns the participant opposite to userID, or "" when the
// user is not part of the call.
func (c *Call) OtherParty(userID string) string {
	switch userID {
	case c.CallerID:
		return c.ReceiverID
	case c.ReceiverID:
		return c.CallerID
	}
	return ""
}

// CallHistoryEntry is a Call annotated with the requesting user's side.
type CallHistoryEntry struct {
	Call
	IsCaller bool `json:"isCaller"`
}
