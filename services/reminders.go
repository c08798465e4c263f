package services

import (
	"fmt"
	"time"

	"smartgov-backend/models"

	"gorm.io/gorm"
)

var validReminderTypes = map[string]bool{
	"deadline":    true,
	"application": true,
	"completion":  true,
}

// ReminderService manages scheme deadline reminders. Dispatch of due
// reminders happens in the background worker, not here.
type ReminderService struct {
	db *gorm.DB
}

func NewReminderService(db *gorm.DB) *ReminderService {
	return &ReminderService{db: db}
}

// Create adds a reminder for an existing scheme.
func (s *ReminderService) Create(userID, schemeID uint, reminderDate time.Time, reminderType string) (*models.SchemeReminder, error) {
	if reminderDate.IsZero() {
		return nil, fmt.Errorf("%w: reminder_date is required", ErrValidation)
	}
	if reminderType == "" {
		reminderType = "deadline"
	}
	if !validReminderTypes[reminderType] {
		return nil, fmt.Errorf("%w: invalid reminder_type '%s'", ErrValidation, reminderType)
	}

	var scheme models.Scheme
	if err := s.db.First(&scheme, schemeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: scheme %d", ErrNotFound, schemeID)
		}
		return nil, err
	}

	reminder := models.SchemeReminder{
		UserID:       userID,
		SchemeID:     schemeID,
		ReminderDate: reminderDate,
		Status:       "active",
		ReminderType: reminderType,
	}
	if err := s.db.Create(&reminder).Error; err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return &reminder, nil
}

// ListActive returns the user's active reminders ordered by due date.
func (s *ReminderService) ListActive(userID uint) ([]models.SchemeReminder, error) {
	var reminders []models.SchemeReminder
	err := s.db.Where("user_id = ? AND status = ?", userID, "active").
		Order("reminder_date ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// MarkSent marks an owned reminder as sent.
func (s *ReminderService) MarkSent(userID, reminderID uint) (*models.SchemeReminder, error) {
	var reminder models.SchemeReminder
	err := s.db.Where("id = ? AND user_id = ?", reminderID, userID).First(&reminder).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: reminder %d", ErrNotFound, reminderID)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reminder.Status = "sent"
	reminder.SentAt = &now
	if err := s.db.Save(&reminder).Error; err != nil {
		return nil, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return &reminder, nil
}
