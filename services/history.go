package services

import (
	"fmt"
	"time"

	"smartgov-backend/models"

	"gorm.io/gorm"
)

var validHistoryActions = map[string]bool{
	"viewed":  true,
	"applied": true,
	"saved":   true,
	"shared":  true,
}

// HistoryService records and queries scheme interaction events.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record appends one interaction event. The scheme must exist.
func (s *HistoryService) Record(userID, schemeID uint, action string) (*models.SchemeHistory, error) {
	if !validHistoryActions[action] {
		return nil, fmt.Errorf("%w: invalid action '%s'", ErrValidation, action)
	}

	var scheme models.Scheme
	if err := s.db.First(&scheme, schemeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: scheme %d", ErrNotFound, schemeID)
		}
		return nil, err
	}

	event := models.SchemeHistory{
		UserID:    userID,
		SchemeID:  schemeID,
		Action:    action,
		Timestamp: time.Now(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to record history: %w", err)
	}
	return &event, nil
}

// RecordViewedOnce records a "viewed" event with get-or-create semantics:
// at most one viewed row per (user, scheme), ever.
func (s *HistoryService) RecordViewedOnce(userID, schemeID uint) error {
	event := models.SchemeHistory{
		UserID:   userID,
		SchemeID: schemeID,
		Action:   "viewed",
	}
	return s.db.
		Where("user_id = ? AND scheme_id = ? AND action = ?", userID, schemeID, "viewed").
		Attrs(models.SchemeHistory{Timestamp: time.Now()}).
		FirstOrCreate(&event).Error
}

// Query returns the user's history, newest first, optionally filtered by action.
func (s *HistoryService) Query(userID uint, actionFilter string) ([]models.SchemeHistory, error) {
	q := s.db.Where("user_id = ?", userID)
	if actionFilter != "" {
		q = q.Where("action = ?", actionFilter)
	}

	var events []models.SchemeHistory
	if err := q.Order("timestamp DESC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return events, nil
}

// SaveScheme bookmarks a scheme. Returns created=false when already saved.
func (s *HistoryService) SaveScheme(userID, schemeID uint) (bool, error) {
	var scheme models.Scheme
	if err := s.db.First(&scheme, schemeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, fmt.Errorf("%w: scheme %d", ErrNotFound, schemeID)
		}
		return false, err
	}

	saved := models.UserSavedScheme{UserID: userID, SchemeID: schemeID}
	result := s.db.
		Where("user_id = ? AND scheme_id = ?", userID, schemeID).
		Attrs(models.UserSavedScheme{SavedAt: time.Now()}).
		FirstOrCreate(&saved)
	if result.Error != nil {
		return false, fmt.Errorf("failed to save scheme: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SavedSchemes lists the user's bookmarks, newest first.
func (s *HistoryService) SavedSchemes(userID uint) ([]models.UserSavedScheme, error) {
	var saved []models.UserSavedScheme
	if err := s.db.Where("user_id = ?", userID).Order("saved_at DESC").Find(&saved).Error; err != nil {
		return nil, fmt.Errorf("failed to list saved schemes: %w", err)
	}
	return saved, nil
}
