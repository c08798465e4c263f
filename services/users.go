package services

import (
	"context"
	"fmt"
	"time"

	"smartgov-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService handles accounts, profiles and identity verification.
type UserService struct {
	db       *gorm.DB
	verifier AadharVerifier
}

func NewUserService(db *gorm.DB, verifier AadharVerifier) *UserService {
	return &UserService{db: db, verifier: verifier}
}

// Register creates an account with a bcrypt-hashed password.
func (s *UserService) Register(username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: username or email already registered", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Authenticate checks the credentials and returns the user.
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}
	return &user, nil
}

// GetByID fetches a user.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Age         *int    `json:"age"`
	Occupation  *string `json:"occupation"`
	State       *string `json:"state"`
	PhoneNumber *string `json:"phone_number"`
}

// UpdateProfile applies the non-nil fields and returns the fresh user.
func (s *UserService) UpdateProfile(userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if update.Age != nil {
		user.Age = update.Age
	}
	if update.Occupation != nil {
		user.Occupation = update.Occupation
	}
	if update.State != nil {
		user.State = update.State
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// VerifyAadhar runs the verification collaborator and records the outcome.
// Only the masked form of the number is ever returned.
func (s *UserService) VerifyAadhar(ctx context.Context, userID uint, aadharNumber string) (*models.AadharVerification, error) {
	if len(aadharNumber) != 12 {
		return nil, fmt.Errorf("%w: aadhar number must be 12 digits", ErrValidation)
	}

	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	result, err := s.verifier.Verify(ctx, aadharNumber)

	verification := models.AadharVerification{
		UserID:       userID,
		MaskedAadhar: MaskAadhar(aadharNumber),
	}
	now := time.Now()
	switch {
	case err != nil:
		verification.Status = "failed"
	case result.Verified:
		verification.Status = "verified"
		verification.ReferenceID = result.ReferenceID
		verification.VerifiedAt = &now
	default:
		verification.Status = "failed"
		verification.ReferenceID = result.ReferenceID
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.AadharVerification
		findErr := tx.Where("user_id = ?", userID).First(&existing).Error
		if findErr == nil {
			verification.ID = existing.ID
			verification.CreatedAt = existing.CreatedAt
			if err := tx.Save(&verification).Error; err != nil {
				return err
			}
		} else if findErr == gorm.ErrRecordNotFound {
			if err := tx.Create(&verification).Error; err != nil {
				return err
			}
		} else {
			return findErr
		}

		if verification.Status == "verified" {
			user.AadharNumber = &aadharNumber
			user.AadharVerified = true
			return tx.Save(user).Error
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("failed to record verification: %w", txErr)
	}

	return &verification, nil
}
