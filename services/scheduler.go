package services

import (
	"os"
	"time"

	"wellness-backend/models"
	"wellness-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// slotMinutes is the booking granularity.
const slotMinutes = 15

var activeStatuses = []models.ReservationStatus{
	models.ReservationPending,
	models.ReservationConfirmed,
}

// Scheduler computes bookable time slots and detects double-booking against
// the reservations table.
type Scheduler struct {
	db           *gorm.DB
	openMinutes  int
	closeMinutes int
}

// NewScheduler reads business hours from BUSINESS_OPEN/BUSINESS_CLOSE
// ("HH:MM"), defaulting to 10:00-20:00.
func NewScheduler(db *gorm.DB) *Scheduler {
	open, err := utils.ParseClock(os.Getenv("BUSINESS_OPEN"))
	if err != nil {
		open, _ = utils.ParseClock("10:00")
	}
	closing, err := utils.ParseClock(os.Getenv("BUSINESS_CLOSE"))
	if err != nil {
		closing, _ = utils.ParseClock("20:00")
	}
	return &Scheduler{db: db, openMinutes: open, closeMinutes: closing}
}

// withDB rebinds the scheduler to another handle, typically a transaction,
// keeping the configured business hours.
func (s *Scheduler) withDB(db *gorm.DB) *Scheduler {
	return &Scheduler{db: db, openMinutes: s.openMinutes, closeMinutes: s.closeMinutes}
}

// AvailableSlots returns the ascending 15-minute slot grid between business
// open and close, minus times held by an active reservation for the service.
// When staffID is given, times where that staff member is already booked are
// excluded as well.
func (s *Scheduler) AvailableSlots(date time.Time, serviceTypeID uuid.UUID, staffID *uuid.UUID) ([]string, error) {
	day := utils.BeginningOfDay(date)

	var taken []string
	if err := retryRead(func() error {
		q := s.db.Model(&models.Reservation{}).
			Where("reservation_date = ? AND status IN ?", day, activeStatuses)
		if staffID != nil {
			q = q.Where("service_type_id = ? OR staff_id = ?", serviceTypeID, *staffID)
		} else {
			q = q.Where("service_type_id = ?", serviceTypeID)
		}
		taken = taken[:0]
		return q.Pluck("reservation_time", &taken).Error
	}); err != nil {
		return nil, err
	}
	booked := make(map[string]bool, len(taken))
	for _, t := range taken {
		booked[t] = true
	}

	slots := make([]string, 0, (s.closeMinutes-s.openMinutes)/slotMinutes)
	for m := s.openMinutes; m < s.closeMinutes; m += slotMinutes {
		t := utils.FormatClock(m)
		if !booked[t] {
			slots = append(slots, t)
		}
	}
	return slots, nil
}

// CheckConflict reports whether an active reservation already occupies the
// service slot key (date, time, service) or, when staffID is given, the
// staff slot key (date, time, staff). The two checks are independent.
// excludeID removes the reservation being edited from consideration.
func (s *Scheduler) CheckConflict(date time.Time, clock string, serviceTypeID uuid.UUID, staffID *uuid.UUID, excludeID uuid.UUID) (*ConflictError, error) {
	day := utils.BeginningOfDay(date)
	conflict := &ConflictError{}

	q := s.db.Model(&models.Reservation{}).
		Where("reservation_date = ? AND reservation_time = ? AND service_type_id = ? AND status IN ?",
			day, clock, serviceTypeID, activeStatuses)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, err
	}
	conflict.Service = count > 0

	if staffID != nil {
		q = s.db.Model(&models.Reservation{}).
			Where("reservation_date = ? AND reservation_time = ? AND staff_id = ? AND status IN ?",
				day, clock, *staffID, activeStatuses)
		if excludeID != uuid.Nil {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return nil, err
		}
		conflict.Staff = count > 0
	}

	if !conflict.Service && !conflict.Staff {
		return nil, nil
	}
	return conflict, nil
}
