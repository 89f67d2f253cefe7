package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceUsage is the consumption record written once per completed visit.
// SessionNumber increases monotonically within its package; it is zero for
// visits not drawn from a package.
type ServiceUsage struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	ServiceTypeID uuid.UUID  `gorm:"type:uuid;index;not null" json:"serviceTypeId"`
	PurchaseID    *uuid.UUID `gorm:"type:uuid;index" json:"purchaseId"`
	ReservationID *uuid.UUID `gorm:"type:uuid;index" json:"reservationId"`

	SessionNumber int       `gorm:"default:0" json:"sessionNumber"`
	Detail        string    `gorm:"type:text" json:"detail"`
	UsedAt        time.Time `gorm:"not null" json:"usedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

func (u *ServiceUsage) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
