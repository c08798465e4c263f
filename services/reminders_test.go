package services

import (
	"testing"
	"time"

	"smartgov-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewReminderService(db)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))
	scheme := newTestScheme(t, db, &models.Scheme{Name: "Kisan Support"})

	due := time.Now().Add(24 * time.Hour)
	reminder, err := svc.Create(user.ID, scheme.ID, due, "")
	require.NoError(t, err)
	assert.Equal(t, "deadline", reminder.ReminderType)
	assert.Equal(t, "active", reminder.Status)

	active, err := svc.ListActive(user.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	sent, err := svc.MarkSent(user.ID, reminder.ID)
	require.NoError(t, err)
	assert.Equal(t, "sent", sent.Status)
	require.NotNil(t, sent.SentAt)

	active, err = svc.ListActive(user.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestReminderValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewReminderService(db)
	user := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))
	scheme := newTestScheme(t, db, &models.Scheme{Name: "Kisan Support"})

	_, err := svc.Create(user.ID, scheme.ID, time.Time{}, "deadline")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(user.ID, scheme.ID, time.Now(), "nudge")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(user.ID, 999, time.Now(), "deadline")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkSentOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewReminderService(db)
	owner := newTestUser(t, db, intPtr(30), strPtr("farmer"), strPtr("Punjab"))
	other := newTestUser(t, db, intPtr(40), strPtr("teacher"), strPtr("Delhi"))
	scheme := newTestScheme(t, db, &models.Scheme{Name: "Kisan Support"})

	reminder, err := svc.Create(owner.ID, scheme.ID, time.Now(), "deadline")
	require.NoError(t, err)

	_, err = svc.MarkSent(other.ID, reminder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
