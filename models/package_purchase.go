package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PackagePurchase is the ledger master for a customer's prepaid sessions.
// Balance fields are mutated only through the session ledger; rows are never
// physically deleted, expiry governs activity.
type PackagePurchase struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	Name              string     `gorm:"not null" json:"name"`
	TotalSessions     int        `gorm:"not null" json:"totalSessions"`
	UsedSessions      int        `gorm:"default:0" json:"usedSessions"`
	RemainingSessions int        `gorm:"not null" json:"remainingSessions"`
	Price             float64    `gorm:"type:decimal(10,2);default:0.0" json:"price"`
	PurchaseDate      time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"purchaseDate"`
	ExpiryDate        *time.Time `json:"expiryDate"`

	Pools []ServicePool `gorm:"foreignKey:PurchaseID" json:"pools,omitempty"`

	gorm.Model
}

func (p *PackagePurchase) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// Expired reports whether the package is past its expiry date. Packages
// without an expiry never expire.
func (p *PackagePurchase) Expired(now time.Time) bool {
	return p.ExpiryDate != nil && p.ExpiryDate.Before(now)
}

// ServicePool is a named per-service partition of a package's balance.
// Legacy rows may have none, in which case the package is one undivided pool.
type ServicePool struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pool_purchase_service,priority:1" json:"purchaseId"`
	ServiceName string    `gorm:"not null;uniqueIndex:idx_pool_purchase_service,priority:2" json:"serviceName"`
	Total       int       `gorm:"not null" json:"total"`
	Used        int       `gorm:"default:0;check:used <= total" json:"used"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (sp *ServicePool) BeforeCreate(tx *gorm.DB) (err error) {
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	return
}

// PoolFor returns the pool matching the service name, or nil.
func PoolFor(pools []ServicePool, serviceName string) *ServicePool {
	for i := range pools {
		if strings.EqualFold(pools[i].ServiceName, serviceName) {
			return &pools[i]
		}
	}
	return nil
}
