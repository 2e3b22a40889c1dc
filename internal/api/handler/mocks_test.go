package handler_test

import (
	"time"

	"chatwave/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) FindMessageByID(messageID string) (*models.Message, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) MessagesByRoomPaged(roomID string, page, limit int) ([]models.Message, error) {
	args := m.Called(roomID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) UndeliveredBetween(receiverID, senderID string) ([]models.Message, error) {
	args := m.Called(receiverID, senderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) PendingForReceiver(receiverID string) ([]models.Message, error) {
	args := m.Called(receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) AdvanceMessageStatus(messageID string, status models.MessageStatus) (bool, error) {
	args := m.Called(messageID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) AdvanceMessagesStatus(messageIDs []string, status models.MessageStatus) ([]string, error) {
	args := m.Called(messageIDs, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) MarkConversationDelivered(receiverID, senderID string) (int64, error) {
	args := m.Called(receiverID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) MarkConversationRead(receiverID, senderID string) (int64, error) {
	args := m.Called(receiverID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) EditMessage(messageID, text string) (bool, error) {
	args := m.Called(messageID, text)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) DeleteMessage(messageID string) (bool, error) {
	args := m.Called(messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) LikeMessage(messageID string) (bool, error) {
	args := m.Called(messageID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ChatRoomSummaries(userID string) ([]models.ChatRoomSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatRoomSummary), args.Error(1)
}

func (m *MockStorage) CreateCall(call *models.Call) error {
	args := m.Called(call)
	return args.Error(0)
}

func (m *MockStorage) FindCallByID(callID string) (*models.Call, error) {
	args := m.Called(callID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Call), args.Error(1)
}

func (m *MockStorage) SaveCall(call *models.Call) error {
	args := m.Called(call)
	return args.Error(0)
}

func (m *MockStorage) DeleteCall(callID string) error {
	args := m.Called(callID)
	return args.Error(0)
}

func (m *MockStorage) HasActiveCallFrom(callerID string) (bool, error) {
	args := m.Called(callerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CallHistory(userID string, page, limit int) ([]models.CallHistoryEntry, error) {
	args := m.Called(userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CallHistoryEntry), args.Error(1)
}

func (m *MockStorage) ClearCallerHistory(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) DisplayInfoByID(userID string) (*models.UserInfo, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserInfo), args.Error(1)
}

func (m *MockStorage) UpdateLastSeen(userID string, at time.Time) error {
	args := m.Called(userID, at)
	return args.Error(0)
}

func (m *MockStorage) LastSeen(userID string) (*time.Time, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
