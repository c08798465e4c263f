package database

import (
	"fmt"
	"log"
	"os"

	"smartgov-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDatabase opens the Postgres connection and runs migrations.
func InitDatabase() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // No logging for cleaner output
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")

	if err := autoMigrateTables(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// NOTIFY trigger wakes the reminder worker on insert
	if err := createReminderNotifyTrigger(); err != nil {
		log.Printf("Warning: Failed to create NOTIFY trigger: %v", err)
	}
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// autoMigrateTables checks and migrates only tables that don't exist
func autoMigrateTables() error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{"users", &models.User{}},
		{"aadhar_verifications", &models.AadharVerification{}},
		{"schemes", &models.Scheme{}},
		{"document_checklists", &models.DocumentChecklist{}},
		{"scheme_histories", &models.SchemeHistory{}},
		{"scheme_reminders", &models.SchemeReminder{}},
		{"user_saved_schemes", &models.UserSavedScheme{}},
		{"chat_sessions", &models.ChatSession{}},
		{"chat_messages", &models.ChatMessage{}},
		{"prompt_templates", &models.PromptTemplate{}},
		{"ai_interaction_logs", &models.AIInteractionLog{}},
	}

	migratedCount := 0
	skippedCount := 0

	log.Println("Checking database tables...")

	for _, table := range tables {
		if !DB.Migrator().HasTable(table.model) {
			log.Printf("Table '%s' not found, creating...", table.name)
			err := DB.AutoMigrate(table.model)
			if err != nil {
				return fmt.Errorf("failed to migrate table %s: %v", table.name, err)
			}
			log.Printf("✓ Created table: %s", table.name)
			migratedCount++
		} else {
			log.Printf("✓ Table '%s' already exists, skipping", table.name)
			skippedCount++
		}
	}

	if migratedCount > 0 {
		log.Printf("Database migration completed: %d tables created, %d tables skipped", migratedCount, skippedCount)
	} else {
		log.Printf("All database tables already exist (%d tables), no migration needed", skippedCount)
	}
	return nil
}

// createReminderNotifyTrigger creates a Postgres NOTIFY trigger so the
// reminder worker wakes up immediately when a new reminder is created.
func createReminderNotifyTrigger() error {
	log.Println("Creating NOTIFY trigger for reminder queue...")

	err := DB.Exec(`
		CREATE OR REPLACE FUNCTION notify_reminder_insert()
		RETURNS TRIGGER AS $$
		BEGIN
			PERFORM pg_notify('scheme_reminders_channel', 'new');
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create notify function: %v", err)
	}

	err = DB.Exec(`
		DROP TRIGGER IF EXISTS scheme_reminders_insert_trigger ON scheme_reminders;
	`).Error
	if err != nil {
		return fmt.Errorf("failed to drop existing trigger: %v", err)
	}

	err = DB.Exec(`
		CREATE TRIGGER scheme_reminders_insert_trigger
		AFTER INSERT ON scheme_reminders
		FOR EACH ROW
		EXECUTE FUNCTION notify_reminder_insert();
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create trigger: %v", err)
	}

	log.Println("✓ NOTIFY trigger created successfully for scheme_reminders_channel")
	return nil
}
