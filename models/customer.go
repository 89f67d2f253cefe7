package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
	CustomerDormant  CustomerStatus = "dormant"
)

// Days-since-last-visit thresholds for the derived customer status.
const (
	ActiveVisitDays   = 30
	InactiveVisitDays = 90
)

type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`

	Name     string     `gorm:"not null" json:"name"`
	Phone    string     `gorm:"not null;uniqueIndex" json:"phone"`
	Email    string     `json:"email"`
	Birthday *time.Time `json:"birthday"`
	Notes    string     `json:"notes"`

	TotalVisits   int            `gorm:"default:0" json:"totalVisits"`
	LastVisitDate *time.Time     `json:"lastVisitDate"`
	Status        CustomerStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	IsActive      bool           `gorm:"default:true" json:"isActive"`

	Packages []PackagePurchase `gorm:"foreignKey:CustomerID" json:"packages,omitempty"`

	gorm.Model
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}

// StatusForLastVisit derives the rollup status from the days elapsed since
// the last completed visit: <=30 active, <=90 inactive, else dormant. A
// customer with no recorded visit counts as dormant.
func StatusForLastVisit(lastVisit *time.Time, now time.Time) CustomerStatus {
	if lastVisit == nil {
		return CustomerDormant
	}
	days := int(now.Sub(*lastVisit).Hours() / 24)
	switch {
	case days <= ActiveVisitDays:
		return CustomerActive
	case days <= InactiveVisitDays:
		return CustomerInactive
	default:
		return CustomerDormant
	}
}
