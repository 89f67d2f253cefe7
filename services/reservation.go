package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"wellness-backend/models"
	"wellness-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationService drives a reservation through its lifecycle:
// pending -> confirmed -> completed, with pending/confirmed -> cancelled and
// confirmed -> no_show as the other legal moves. Every transition runs in its
// own transaction with the reservation row locked, so concurrent transitions
// on the same reservation serialize instead of clobbering each other.
type ReservationService struct {
	db         *gorm.DB
	scheduler  *Scheduler
	completion *CompletionService
	notifier   NotificationGateway
}

func NewReservationService(db *gorm.DB, notifier NotificationGateway) *ReservationService {
	return &ReservationService{
		db:         db,
		scheduler:  NewScheduler(db),
		completion: NewCompletionService(db, notifier),
		notifier:   notifier,
	}
}

func (s *ReservationService) Scheduler() *Scheduler {
	return s.scheduler
}

type CreateReservationInput struct {
	CustomerID    uuid.UUID
	ServiceTypeID uuid.UUID
	StaffID       *uuid.UUID
	PurchaseID    *uuid.UUID
	Date          time.Time
	Time          string
	Duration      int
	Notes         string
}

// Create books a new pending reservation. The conflict pre-check gives
// callers a precise error; the partial unique indexes on the active slot
// keys are what actually make two concurrent creates resolve to exactly one
// winner.
func (s *ReservationService) Create(input CreateReservationInput) (*models.Reservation, error) {
	if !utils.ValidateClock(input.Time) {
		return nil, fmt.Errorf("%w: reservation time must be HH:MM", ErrValidation)
	}

	var customer models.Customer
	if err := s.db.First(&customer, "id = ?", input.CustomerID).Error; err != nil {
		return nil, notFoundOr(err, "customer")
	}

	var serviceType models.ServiceType
	if err := s.db.First(&serviceType, "id = ?", input.ServiceTypeID).Error; err != nil {
		return nil, notFoundOr(err, "service type")
	}

	if input.StaffID != nil {
		var staff models.User
		if err := s.db.First(&staff, "id = ?", *input.StaffID).Error; err != nil {
			return nil, notFoundOr(err, "staff member")
		}
	}

	if input.PurchaseID != nil {
		var purchase models.PackagePurchase
		if err := s.db.First(&purchase, "id = ?", *input.PurchaseID).Error; err != nil {
			return nil, notFoundOr(err, "package purchase")
		}
		if purchase.CustomerID != input.CustomerID {
			return nil, fmt.Errorf("%w: package belongs to a different customer", ErrValidation)
		}
	}

	duration := input.Duration
	if duration <= 0 {
		duration = serviceType.Duration
	}

	conflict, err := s.scheduler.CheckConflict(input.Date, input.Time, input.ServiceTypeID, input.StaffID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, conflict
	}

	reservation := models.Reservation{
		CustomerID:      input.CustomerID,
		ServiceTypeID:   input.ServiceTypeID,
		StaffID:         input.StaffID,
		PurchaseID:      input.PurchaseID,
		ReservationDate: utils.BeginningOfDay(input.Date),
		ReservationTime: input.Time,
		Duration:        duration,
		Status:          models.ReservationPending,
		Notes:           input.Notes,
	}

	if err := s.db.Create(&reservation).Error; err != nil {
		// Lost the race to a concurrent create on the same slot key.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Service: true, Staff: input.StaffID != nil}
		}
		return nil, err
	}
	return &reservation, nil
}

type UpdateReservationInput struct {
	ServiceTypeID *uuid.UUID
	StaffID       *uuid.UUID
	ClearStaff    bool
	PurchaseID    *uuid.UUID
	Date          *time.Time
	Time          *string
	Duration      *int
	Notes         *string
}

// Update reschedules or edits a reservation while it is still active. The
// row stays locked for the whole edit; when the booking key changes, the new
// key is conflict-checked excluding the reservation itself.
func (s *ReservationService) Update(id uuid.UUID, input UpdateReservationInput) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&reservation, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "reservation")
		}
		if !reservation.Status.Active() {
			return &InvalidTransitionError{State: reservation.Status, Action: "modify"}
		}

		keyChanged := false
		if input.Date != nil {
			reservation.ReservationDate = utils.BeginningOfDay(*input.Date)
			keyChanged = true
		}
		if input.Time != nil {
			if !utils.ValidateClock(*input.Time) {
				return fmt.Errorf("%w: reservation time must be HH:MM", ErrValidation)
			}
			reservation.ReservationTime = *input.Time
			keyChanged = true
		}
		if input.ServiceTypeID != nil {
			var serviceType models.ServiceType
			if err := tx.First(&serviceType, "id = ?", *input.ServiceTypeID).Error; err != nil {
				return notFoundOr(err, "service type")
			}
			reservation.ServiceTypeID = *input.ServiceTypeID
			keyChanged = true
		}
		if input.ClearStaff {
			reservation.StaffID = nil
			keyChanged = true
		} else if input.StaffID != nil {
			var staff models.User
			if err := tx.First(&staff, "id = ?", *input.StaffID).Error; err != nil {
				return notFoundOr(err, "staff member")
			}
			reservation.StaffID = input.StaffID
			keyChanged = true
		}
		if input.PurchaseID != nil {
			var purchase models.PackagePurchase
			if err := tx.First(&purchase, "id = ?", *input.PurchaseID).Error; err != nil {
				return notFoundOr(err, "package purchase")
			}
			if purchase.CustomerID != reservation.CustomerID {
				return fmt.Errorf("%w: package belongs to a different customer", ErrValidation)
			}
			reservation.PurchaseID = input.PurchaseID
		}
		if input.Duration != nil {
			reservation.Duration = *input.Duration
		}
		if input.Notes != nil {
			reservation.Notes = *input.Notes
		}

		if keyChanged {
			conflict, err := s.scheduler.withDB(tx).CheckConflict(
				reservation.ReservationDate, reservation.ReservationTime,
				reservation.ServiceTypeID, reservation.StaffID, reservation.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return conflict
			}
		}

		if err := tx.Save(&reservation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{Service: true, Staff: reservation.StaffID != nil}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Confirm moves a pending reservation to confirmed and dispatches the
// confirmation message best-effort.
func (s *ReservationService) Confirm(id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&reservation, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "reservation")
		}
		if reservation.Status != models.ReservationPending {
			return &InvalidTransitionError{State: reservation.Status, Action: "confirm"}
		}
		reservation.Status = models.ReservationConfirmed
		return tx.Model(&reservation).Update("status", models.ReservationConfirmed).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendConfirmation(&reservation); err != nil {
		log.Printf("confirmation notification for reservation %s failed: %v", reservation.ID, err)
	} else if err := s.db.Model(&reservation).Update("confirmation_sent", true).Error; err != nil {
		log.Printf("failed to flag confirmation for reservation %s: %v", reservation.ID, err)
	} else {
		reservation.ConfirmationSent = true
	}
	return &reservation, nil
}

// Cancel records the reason and timestamp and frees the slot. Terminal
// reservations cannot be cancelled; the locked read makes a cancel racing a
// completion see the committed terminal state instead of a stale snapshot.
func (s *ReservationService) Cancel(id uuid.UUID, reason string) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&reservation, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "reservation")
		}
		if !reservation.Status.Active() {
			return &InvalidTransitionError{State: reservation.Status, Action: "cancel"}
		}

		now := time.Now()
		reservation.Status = models.ReservationCancelled
		reservation.CancelReason = reason
		reservation.CancelledAt = &now
		return tx.Model(&reservation).Updates(map[string]interface{}{
			"status":        models.ReservationCancelled,
			"cancel_reason": reason,
			"cancelled_at":  &now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendCancellation(&reservation); err != nil {
		log.Printf("cancellation notification for reservation %s failed: %v", reservation.ID, err)
	}
	return &reservation, nil
}

// NoShow marks a confirmed reservation the customer did not attend.
func (s *ReservationService) NoShow(id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&reservation, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "reservation")
		}
		if reservation.Status != models.ReservationConfirmed {
			return &InvalidTransitionError{State: reservation.Status, Action: "mark no-show"}
		}
		reservation.Status = models.ReservationNoShow
		return tx.Model(&reservation).Update("status", models.ReservationNoShow).Error
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Complete hands off to the completion transaction, which performs the state
// change as its final step only after ledger and rollup writes succeed.
func (s *ReservationService) Complete(id uuid.UUID, detail string) (*models.Reservation, error) {
	return s.completion.Complete(id, detail)
}

// PurgeCancelled physically removes already-cancelled reservations. No other
// state is ever hard-deleted.
func (s *ReservationService) PurgeCancelled() (int64, error) {
	result := s.db.Unscoped().
		Where("status = ?", models.ReservationCancelled).
		Delete(&models.Reservation{})
	return result.RowsAffected, result.Error
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
