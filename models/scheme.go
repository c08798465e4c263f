package models

import (
	"time"

	"gorm.io/datatypes"
)

// Scheme: government welfare scheme with free-text eligibility metadata.
// ApplicableStates and ApplicableOccupations are comma-separated lists matched
// by case-insensitive substring; Documents is a comma-separated document list.
type Scheme struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Name                  string     `gorm:"size:200;not null" json:"name"`
	Category              string     `gorm:"size:100;index" json:"category"`
	Description           string     `gorm:"type:text" json:"description"`
	Eligibility           string     `gorm:"type:text" json:"eligibility"`
	Documents             string     `gorm:"type:text" json:"documents"`
	ApplyLink             string     `gorm:"size:500" json:"apply_link"`
	Deadline              *time.Time `json:"deadline"`
	AgeMin                *int       `json:"age_min"`
	AgeMax                *int       `json:"age_max"`
	ApplicableStates      string     `gorm:"size:500" json:"applicable_states"`
	ApplicableOccupations *string    `gorm:"size:500" json:"applicable_occupations"`
	Benefits              string     `gorm:"type:text" json:"benefits"`
	ApplicationProcess    string     `gorm:"type:text" json:"application_process"`
	ContactInfo           string     `gorm:"size:500" json:"contact_info"`
	CreatedAt             time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (Scheme) TableName() string {
	return "schemes"
}

// DocumentChecklist: per (user, scheme) map of document key -> completed flag.
// Regeneration overwrites the whole row, it never merges.
type DocumentChecklist struct {
	ID                   uint              `gorm:"primaryKey" json:"id"`
	UserID               uint              `gorm:"not null;uniqueIndex:idx_checklist_user_scheme" json:"user_id"`
	SchemeID             uint              `gorm:"not null;uniqueIndex:idx_checklist_user_scheme" json:"scheme_id"`
	Documents            datatypes.JSONMap `json:"documents"`
	Age                  int               `json:"age"`
	Occupation           string            `gorm:"size:100" json:"occupation"`
	State                string            `gorm:"size:50" json:"state"`
	CompletionPercentage int               `gorm:"default:0" json:"completion_percentage"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

func (DocumentChecklist) TableName() string {
	return "document_checklists"
}

// SchemeHistory: append-only interaction ledger.
type SchemeHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	SchemeID  uint      `gorm:"index;not null" json:"scheme_id"`
	Action    string    `gorm:"size:20;index;not null" json:"action"` // viewed|applied|saved|shared
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

func (SchemeHistory) TableName() string {
	return "scheme_histories"
}

// SchemeReminder: deadline reminder dispatched by the background worker.
type SchemeReminder struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"user_id"`
	SchemeID     uint       `gorm:"index;not null" json:"scheme_id"`
	ReminderDate time.Time  `gorm:"index" json:"reminder_date"`
	Status       string     `gorm:"size:20;index;default:'active'" json:"status"` // active|sent|completed
	ReminderType string     `gorm:"size:20;default:'deadline'" json:"reminder_type"`
	SentAt       *time.Time `json:"sent_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (SchemeReminder) TableName() string {
	return "scheme_reminders"
}

// UserSavedScheme: bookmark, unique per (user, scheme).
type UserSavedScheme struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_saved_user_scheme" json:"user_id"`
	SchemeID uint      `gorm:"not null;uniqueIndex:idx_saved_user_scheme" json:"scheme_id"`
	SavedAt  time.Time `json:"saved_at"`
}

func (UserSavedScheme) TableName() string {
	return "user_saved_schemes"
}
