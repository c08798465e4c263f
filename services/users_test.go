package services

import (
	"context"
	"testing"

	"smartgov-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &SimulatedAadharVerifier{})

	user, err := svc.Register("ramesh", "ramesh@example.org", "secret123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	authed, err := svc.Authenticate("ramesh", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = svc.Authenticate("ramesh", "wrong")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Authenticate("nobody", "secret123")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDuplicate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &SimulatedAadharVerifier{})

	_, err := svc.Register("ramesh", "ramesh@example.org", "secret123")
	require.NoError(t, err)

	_, err = svc.Register("ramesh", "other@example.org", "secret123")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register("other", "ramesh@example.org", "secret123")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &SimulatedAadharVerifier{})
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	updated, err := svc.UpdateProfile(user.ID, ProfileUpdate{Age: intPtr(31)})
	require.NoError(t, err)
	require.NotNil(t, updated.Age)
	assert.Equal(t, 31, *updated.Age)

	// Untouched fields survive a partial update
	require.NotNil(t, updated.Occupation)
	assert.Equal(t, "farmer", *updated.Occupation)
	require.NotNil(t, updated.State)
	assert.Equal(t, "Punjab", *updated.State)
}

func TestHasCompleteProfile(t *testing.T) {
	complete := models.User{Age: intPtr(30), Occupation: strPtr("farmer"), State: strPtr("Punjab")}
	assert.True(t, complete.HasCompleteProfile())

	assert.False(t, (&models.User{Occupation: strPtr("farmer"), State: strPtr("Punjab")}).HasCompleteProfile())
	assert.False(t, (&models.User{Age: intPtr(30), Occupation: strPtr(""), State: strPtr("Punjab")}).HasCompleteProfile())
	assert.False(t, (&models.User{Age: intPtr(30), Occupation: strPtr("farmer")}).HasCompleteProfile())
}

func TestMaskAadhar(t *testing.T) {
	assert.Equal(t, "XXXX-XXXX-9012", MaskAadhar("123456789012"))
	assert.Equal(t, "XXXX-XXXX-XXXX", MaskAadhar("12"))
}

func TestVerifyAadharSimulated(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &SimulatedAadharVerifier{})
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	verification, err := svc.VerifyAadhar(context.Background(), user.ID, "123456789012")
	require.NoError(t, err)
	assert.Equal(t, "verified", verification.Status)
	assert.Equal(t, "XXXX-XXXX-9012", verification.MaskedAadhar)
	assert.NotEmpty(t, verification.ReferenceID)
	require.NotNil(t, verification.VerifiedAt)

	fresh, err := svc.GetByID(user.ID)
	require.NoError(t, err)
	assert.True(t, fresh.AadharVerified)
	require.NotNil(t, fresh.AadharNumber)
	assert.Equal(t, "123456789012", *fresh.AadharNumber)
}

func TestVerifyAadharInvalidLength(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &SimulatedAadharVerifier{})
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	_, err := svc.VerifyAadhar(context.Background(), user.ID, "1234")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVerifyAadharReVerifyReusesRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, &SimulatedAadharVerifier{})
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))

	first, err := svc.VerifyAadhar(context.Background(), user.ID, "123456789012")
	require.NoError(t, err)

	second, err := svc.VerifyAadhar(context.Background(), user.ID, "999956789012")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.AadharVerification{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBuildSystemMessageMissingFields(t *testing.T) {
	user := &models.User{}
	msg := BuildSystemMessage(nil, user)
	assert.Contains(t, msg, "Age: N/A")
	assert.Contains(t, msg, "Occupation: N/A")
	assert.Contains(t, msg, "State: N/A")
	assert.Contains(t, msg, "Aadhar Verified: false")

	complete := &models.User{Age: intPtr(30), Occupation: strPtr("farmer"), State: strPtr("Punjab"), AadharVerified: true}
	msg = BuildSystemMessage(nil, complete)
	assert.Contains(t, msg, "Age: 30")
	assert.Contains(t, msg, "Aadhar Verified: true")
}
