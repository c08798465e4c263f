package worker

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"smartgov-backend/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ReminderWorker dispatches due scheme reminders in the background. It wakes
// on Postgres NOTIFY when a reminder is created and falls back to polling so
// nothing is lost when the LISTEN connection drops.
type ReminderWorker struct {
	db       *gorm.DB
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewReminderWorker creates a new worker instance
func NewReminderWorker(db *gorm.DB) *ReminderWorker {
	return &ReminderWorker{
		db:       db,
		shutdown: make(chan struct{}),
	}
}

// Start begins the reminder dispatch loop
func (w *ReminderWorker) Start() {
	log.Println("⏰ Reminder worker started")

	w.wg.Add(1)
	go w.listenForReminders()

	// Fallback polling (every 60 seconds if no notifications)
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			log.Println("🛑 Reminder worker shutting down...")
			w.wg.Wait()
			log.Println("✅ Reminder worker stopped")
			return
		case <-ticker.C:
			w.dispatchDueReminders()
		}
	}
}

// Stop signals worker to shutdown gracefully
func (w *ReminderWorker) Stop() {
	close(w.shutdown)
}

// listenForReminders sets up PostgreSQL LISTEN with auto-reconnect
func (w *ReminderWorker) listenForReminders() {
	defer w.wg.Done()

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)

	eventCallback := func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			log.Println("✅ [LISTEN] Connected - instant reminder dispatch enabled")
		case pq.ListenerEventDisconnected:
			log.Println("ℹ️  [LISTEN] Disconnected (polling fallback active)")
		case pq.ListenerEventReconnected:
			log.Println("✅ [LISTEN] Reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			if err != nil && !strings.Contains(err.Error(), "connection") && !strings.Contains(err.Error(), "forcibly closed") {
				log.Printf("⚠️  [LISTEN] Error: %v (polling fallback active)\n", err)
			}
		}
	}

	listener := pq.NewListener(connStr, 10*time.Second, time.Minute, eventCallback)

	err := listener.Listen("scheme_reminders_channel")
	if err != nil {
		log.Printf("Failed to listen on scheme_reminders_channel: %v (polling only)", err)
		return
	}
	defer listener.Close()

	log.Println("👂 Listening for reminder notifications on scheme_reminders_channel...")

	keepaliveTicker := time.NewTicker(60 * time.Second)
	defer keepaliveTicker.Stop()

	for {
		select {
		case <-w.shutdown:
			log.Println("🔕 Stopping reminder listener...")
			return

		case notification := <-listener.Notify:
			if notification != nil {
				w.dispatchDueReminders()
			}

		case <-keepaliveTicker.C:
			go func() {
				_ = listener.Ping() // Silent - ping failures are expected on cloud DB
			}()
		}
	}
}

// dispatchDueReminders claims and dispatches due reminders one at a time.
// FOR UPDATE SKIP LOCKED lets multiple instances run without double-sending.
func (w *ReminderWorker) dispatchDueReminders() {
	for {
		var reminder models.SchemeReminder
		tx := w.db.Begin()

		err := tx.Raw(`
			SELECT * FROM scheme_reminders
			WHERE status = 'active'
			AND reminder_date <= NOW()
			ORDER BY reminder_date ASC, id ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		`).Scan(&reminder).Error

		if err != nil || reminder.ID == 0 {
			tx.Rollback()
			return // No due reminders
		}

		now := time.Now()
		if err := tx.Model(&reminder).Updates(map[string]interface{}{
			"status":  "sent",
			"sent_at": now,
		}).Error; err != nil {
			tx.Rollback()
			log.Printf("⚠️  Failed to mark reminder #%d sent: %v", reminder.ID, err)
			return
		}
		if err := tx.Commit().Error; err != nil {
			log.Printf("⚠️  Failed to commit reminder #%d: %v", reminder.ID, err)
			return
		}

		// Delivery channel (email/SMS) is outside this service; marking sent
		// makes the reminder visible to clients polling their reminder list.
		log.Printf("📬 Reminder #%d dispatched (user %d, scheme %d, type %s)",
			reminder.ID, reminder.UserID, reminder.SchemeID, reminder.ReminderType)
	}
}
