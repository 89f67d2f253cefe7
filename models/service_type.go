package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceType is immutable reference data describing one bookable service.
type ServiceType struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Duration    int       `gorm:"default:60" json:"duration"` // in minutes
	Price       float64   `gorm:"type:decimal(10,2);default:0.0" json:"price"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`

	gorm.Model
}

func (s *ServiceType) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// DefaultServiceNames are the four services offered by the center. They seed
// the service_types table and anchor the legacy package-name heuristics.
var DefaultServiceNames = []string{"Lymph", "Massage", "Skincare", "Bodycare"}
