package services

import (
	"log"
	"time"

	"wellness-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompletionService runs the one multi-entity write path in the system:
// ledger draw, usage record, customer rollup and the final state change, all
// inside a single database transaction.
type CompletionService struct {
	db       *gorm.DB
	notifier NotificationGateway
}

func NewCompletionService(db *gorm.DB, notifier NotificationGateway) *CompletionService {
	return &CompletionService{db: db, notifier: notifier}
}

// Complete transitions the reservation to completed. When a package purchase
// is designated, one session is consumed and a numbered usage row is written;
// the session number is counted under the same purchase row lock as the
// consume, so concurrent completions cannot assign duplicates. Any failure
// rolls the whole transaction back. The post-commit notification is
// best-effort and never undoes the transaction.
func (s *CompletionService) Complete(reservationID uuid.UUID, detail string) (*models.Reservation, error) {
	var reservation models.Reservation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&reservation, "id = ?", reservationID).Error; err != nil {
			return notFoundOr(err, "reservation")
		}
		if !reservation.Status.Active() {
			return &InvalidTransitionError{State: reservation.Status, Action: "complete"}
		}

		var serviceType models.ServiceType
		if err := tx.First(&serviceType, "id = ?", reservation.ServiceTypeID).Error; err != nil {
			return notFoundOr(err, "service type")
		}

		sessionNumber := 0
		if reservation.PurchaseID != nil {
			ledger := NewSessionLedger(tx)
			if _, err := ledger.Consume(*reservation.PurchaseID, serviceType.Name); err != nil {
				return err
			}

			// Counting existing rows and inserting the next one is itself a
			// read-modify-write; it runs under the purchase lock Consume holds.
			var count int64
			if err := tx.Model(&models.ServiceUsage{}).
				Where("purchase_id = ?", *reservation.PurchaseID).
				Count(&count).Error; err != nil {
				return err
			}
			sessionNumber = int(count) + 1
		}

		usage := models.ServiceUsage{
			CustomerID:    reservation.CustomerID,
			ServiceTypeID: reservation.ServiceTypeID,
			PurchaseID:    reservation.PurchaseID,
			ReservationID: &reservation.ID,
			SessionNumber: sessionNumber,
			Detail:        detail,
			UsedAt:        time.Now(),
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}

		var customer models.Customer
		if err := lockForUpdate(tx).First(&customer, "id = ?", reservation.CustomerID).Error; err != nil {
			return notFoundOr(err, "customer")
		}
		visitDate := reservation.ReservationDate
		customer.LastVisitDate = &visitDate
		customer.TotalVisits++
		customer.Status = models.StatusForLastVisit(customer.LastVisitDate, time.Now())
		if err := tx.Save(&customer).Error; err != nil {
			return err
		}

		reservation.Status = models.ReservationCompleted
		return tx.Save(&reservation).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.notifier.SendCompletion(&reservation); err != nil {
		log.Printf("completion notification for reservation %s failed: %v", reservation.ID, err)
	}
	return &reservation, nil
}
