package services

import (
	"log"
	"time"

	"wellness-backend/models"
	"wellness-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService dispatches next-day reservation reminders on a daily
// schedule. Each reservation is reminded at most once via the reminder_sent
// flag.
type ReminderService struct {
	db       *gorm.DB
	notifier NotificationGateway
}

func NewReminderService(db *gorm.DB, notifier NotificationGateway) *ReminderService {
	return &ReminderService{db: db, notifier: notifier}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.SendDailyReminders)

	c.Start()
	log.Println("Reminder scheduler started")
}

// SendDailyReminders finds tomorrow's confirmed, unreminded reservations and
// dispatches a reminder for each. Delivery failures are logged and retried
// on the next run since the flag stays unset.
func (s *ReminderService) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	tomorrow := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))

	var due []models.Reservation
	if err := retryRead(func() error {
		due = due[:0]
		return s.db.
			Where("reservation_date = ? AND status = ? AND reminder_sent = ?",
				tomorrow, models.ReservationConfirmed, false).
			Find(&due).Error
	}); err != nil {
		log.Printf("Failed to fetch reservations due for reminders: %v", err)
		return
	}

	sent := 0
	for i := range due {
		if err := s.notifier.SendReminder(&due[i]); err != nil {
			log.Printf("Reminder for reservation %s failed: %v", due[i].ID, err)
			continue
		}
		if err := s.db.Model(&due[i]).Update("reminder_sent", true).Error; err != nil {
			log.Printf("Failed to flag reminder for reservation %s: %v", due[i].ID, err)
			continue
		}
		sent++
	}

	log.Printf("Daily reminder processing completed: %d/%d sent", sent, len(due))
}
