package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// Active reports whether the reservation still occupies its slot.
func (s ReservationStatus) Active() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// Terminal reports whether the reservation reached a final state.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled || s == ReservationNoShow
}

type Reservation struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	ServiceTypeID uuid.UUID  `gorm:"type:uuid;index;not null" json:"serviceTypeId"`
	StaffID       *uuid.UUID `gorm:"type:uuid;index" json:"staffId"`
	// Package designated for consumption when the reservation completes. The
	// resulting usage row records the draw; nothing is written back here.
	PurchaseID *uuid.UUID `gorm:"type:uuid;index" json:"purchaseId"`

	ReservationDate time.Time         `gorm:"type:date;not null;index" json:"reservationDate"`
	ReservationTime string            `gorm:"type:varchar(5);not null" json:"reservationTime"` // "15:04"
	Duration        int               `gorm:"default:60" json:"duration"`                      // in minutes
	Status          ReservationStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Notes           string            `json:"notes"`

	CancelReason string     `json:"cancelReason"`
	CancelledAt  *time.Time `json:"cancelledAt"`

	// Delivery flags written by the notification side channel.
	ConfirmationSent bool `gorm:"default:false" json:"confirmationSent"`
	ReminderSent     bool `gorm:"default:false" json:"reminderSent"`

	Customer    Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	ServiceType ServiceType `gorm:"foreignKey:ServiceTypeID" json:"serviceType,omitempty"`
	Staff       *User       `gorm:"foreignKey:StaffID" json:"staff,omitempty"`

	gorm.Model
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
