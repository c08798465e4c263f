package services

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"smartgov-backend/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.AadharVerification{},
		&models.Scheme{},
		&models.DocumentChecklist{},
		&models.SchemeHistory{},
		&models.SchemeReminder{},
		&models.UserSavedScheme{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.PromptTemplate{},
		&models.AIInteractionLog{},
	)
	require.NoError(t, err)

	return db
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

var testUserSeq int64

func newTestUser(t *testing.T, db *gorm.DB, age *int, occupation, state *string) *models.User {
	t.Helper()

	seq := atomic.AddInt64(&testUserSeq, 1)
	user := &models.User{
		Username:     fmt.Sprintf("testuser-%d", seq),
		Email:        fmt.Sprintf("testuser-%d@example.org", seq),
		PasswordHash: "x",
		Age:          age,
		Occupation:   occupation,
		State:        state,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newTestScheme(t *testing.T, db *gorm.DB, scheme *models.Scheme) *models.Scheme {
	t.Helper()
	require.NoError(t, db.Create(scheme).Error)
	return scheme
}
