package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a chat participant. Account creation and profile
// management live in a separate service; the hub only reads display
// fields and maintains LastSeen.
type User struct {
	ID         string `gorm:"primaryKey" json:"id"` // UUID
	Username   string `gorm:"uniqueIndex;not null" json:"username"`
	FullName   string `json:"fullName"`
	ProfileURL string `json:"profileURL"`

	// LastSeen is the moment the user's last connection went away.
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// BeforeCreate is a GORM hook generating a UUID when the ID is not set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// UserInfo is the denormalized display subset the hub attaches to
// notifications and call records.
type UserInfo struct {
	ID         string `json:"userId"`
	Username   string `json:"username"`
	FullName   string `json:"fullName"`
	ProfileURL string `json:"profileURL"`
}
