package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"chatwave/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is everything the hub and the HTTP handlers need from
// persistence. PostgreSQL holds the records, Redis mirrors the
// last-seen timestamps for cheap presence lookups.
type Storage interface {
	// Messages
	CreateMessage(msg *models.Message) error
	FindMessageByID(messageID string) (*models.Message, error)
	MessagesByRoomPaged(roomID string, page, limit int) ([]models.Message, error)
	UndeliveredBetween(receiverID, senderID string) ([]models.Message, error)
	PendingForReceiver(receiverID string) ([]models.Message, error)
	AdvanceMessageStatus(messageID string, status models.MessageStatus) (bool, error)
	AdvanceMessagesStatus(messageIDs []string, status models.MessageStatus) ([]string, error)
	MarkConversationDelivered(receiverID, senderID string) (int64, error)
	MarkConversationRead(receiverID, senderID string) (int64, error)
	EditMessage(messageID, text string) (bool, error)
	DeleteMessage(messageID string) (bool, error)
	LikeMessage(messageID string) (bool, error)
	ChatRoomSummaries(userID string) ([]models.ChatRoomSummary, error)

	// Calls
	CreateCall(call *models.Call) error
	FindCallByID(callID string) (*models.Call, error)
	SaveCall(call *models.Call) error
	DeleteCall(callID string) error
	HasActiveCallFrom(callerID string) (bool, error)
	CallHistory(userID string, page, limit int) ([]models.CallHistoryEntry, error)
	ClearCallerHistory(userID string) (int64, error)

	// Users
	DisplayInfoByID(userID string) (*models.UserInfo, error)
	UpdateLastSeen(userID string, at time.Time) error
	LastSeen(userID string) (*time.Time, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService constructs the storage service over an open gorm DB and a
// connected Redis client.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

const lastSeenKeyPrefix = "lastseen:"

// DisplayInfoByID loads the display subset of a user row.
func (s *Service) DisplayInfoByID(userID string) (*models.UserInfo, error) {
	var user models.User
	if err := s.DB.Select("id", "username", "full_name", "profile_url").
		Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &models.UserInfo{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		ProfileURL: user.ProfileURL,
	}, nil
}

// UpdateLastSeen writes the timestamp to PostgreSQL and mirrors it to
// Redis. A Redis failure is logged, not propagated; the row is the
// source of truth.
func (s *Service) UpdateLastSeen(userID string, at time.Time) error {
	if err := s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen", at).Error; err != nil {
		return err
	}

	if err := s.Redis.Set(s.Ctx, lastSeenKeyPrefix+userID, at.Format(time.RFC3339), 0).Err(); err != nil {
		log.Printf("WARNING: failed to cache last seen for %s: %v", userID, err)
	}
	return nil
}

// LastSeen reads the cached timestamp, falling back to PostgreSQL when
// the key is missing. Returns nil when the user has never disconnected.
func (s *Service) LastSeen(userID string) (*time.Time, error) {
	val, err := s.Redis.Get(s.Ctx, lastSeenKeyPrefix+userID).Result()
	if err == nil {
		if t, parseErr := time.Parse(time.RFC3339, val); parseErr == nil {
			return &t, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("WARNING: failed to read cached last seen for %s: %v", userID, err)
	}

	var user models.User
	err = s.DB.Select("last_seen").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.LastSeen, nil
}
