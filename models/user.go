package models

import "time"

// User: citizen account with the profile fields personalization depends on.
// Age, Occupation and State are pointers because an incomplete profile must be
// detectable (nil), not defaulted.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	Age            *int      `json:"age"`
	Occupation     *string   `gorm:"size:100" json:"occupation"`
	State          *string   `gorm:"size:50" json:"state"`
	PhoneNumber    string    `gorm:"size:20" json:"phone_number"`
	AadharNumber   *string   `gorm:"size:12;uniqueIndex" json:"-"`
	AadharVerified bool      `gorm:"default:false" json:"aadhar_verified"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasCompleteProfile reports whether all personalization preconditions are met.
func (u *User) HasCompleteProfile() bool {
	return u.Age != nil && u.Occupation != nil && *u.Occupation != "" &&
		u.State != nil && *u.State != ""
}

// AadharVerification: result of a verification attempt, one per user.
// Only the masked form is ever returned to clients.
type AadharVerification struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	MaskedAadhar string     `gorm:"size:14" json:"masked_aadhar"`
	Status       string     `gorm:"size:20;default:'pending'" json:"status"` // pending|verified|failed
	ReferenceID  string     `gorm:"size:64" json:"reference_id"`
	VerifiedAt   *time.Time `json:"verified_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (AadharVerification) TableName() string {
	return "aadhar_verifications"
}
