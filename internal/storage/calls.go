package storage

import (
	"errors"

	"chatwave/backend/internal/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// CreateCall persists a new call record.
func (s *Service) CreateCall(call *models.Call) error {
	return s.DB.Create(call).Error
}

// FindCallByID loads a call by its wire identifier. Returns nil without
// error when no record matches.
func (s *Service) FindCallByID(callID string) (*models.Call, error) {
	var call models.Call
	err := s.DB.Where("call_id = ?", callID).First(&call).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &call, nil
}

// SaveCall writes back a mutated call record.
func (s *Service) SaveCall(call *models.Call) error {
	return s.DB.Save(call).Error
}

// DeleteCall removes a call record permanently. Used when the receiver
// turns out to be offline so no orphaned ringing record survives.
func (s *Service) DeleteCall(callID string) error {
	return s.DB.Unscoped().Where("call_id = ?", callID).Delete(&models.Call{}).Error
}

// HasActiveCallFrom reports whether the user currently has a call in
// "active" status as the caller.
func (s *Service) HasActiveCallFrom(callerID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Call{}).
		Where("caller_id = ? AND status = ?", callerID, models.CallActive).
		Count(&count).Error
	return count > 0, err
}

// CallHistory returns one page of calls involving the user, newest
// first, annotated with which side the user was on.
func (s *Service) CallHistory(userID string, page, limit int) ([]models.CallHistoryEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var calls []models.Call
	err := s.DB.Where("caller_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&calls).Error
	if err != nil {
		return nil, err
	}

	return lo.Map(calls, func(c models.Call, _ int) models.CallHistoryEntry {
		return models.CallHistoryEntry{Call: c, IsCaller: c.CallerID == userID}
	}), nil
}

// ClearCallerHistory permanently deletes the user's outgoing call
// records and returns how many were removed.
func (s *Service) ClearCallerHistory(userID string) (int64, error) {
	res := s.DB.Unscoped().Where("caller_id = ?", userID).Delete(&models.Call{})
	return res.RowsAffected, res.Error
}
