package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"wellness-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionLedger guards the prepaid-session balance of package purchases,
// including legacy per-service sub-pools. Construct it with the transaction
// handle of the surrounding unit of work; Consume assumes it runs inside one.
type SessionLedger struct {
	db *gorm.DB
}

func NewSessionLedger(db *gorm.DB) *SessionLedger {
	return &SessionLedger{db: db}
}

// lockForUpdate acquires a row lock so the read-modify-write on the balance
// is serialized across concurrent transactions. SQLite has no FOR UPDATE
// syntax and runs a single writer, so the clause is skipped there.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ConsumeResult reports the balance after a successful draw.
type ConsumeResult struct {
	PurchaseID    uuid.UUID
	ServiceName   string
	Remaining     int
	PoolRemaining *int // nil when the package has no sub-pools
}

// Consume decrements one session from the purchase, and from the sub-pool
// matching serviceName when pools exist. The purchase row is locked for the
// whole read-modify-write, so once the balance reaches zero at most one of
// any concurrent consumers can succeed.
func (l *SessionLedger) Consume(purchaseID uuid.UUID, serviceName string) (*ConsumeResult, error) {
	var purchase models.PackagePurchase
	if err := lockForUpdate(l.db).First(&purchase, "id = ?", purchaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("package purchase %s: %w", purchaseID, ErrNotFound)
		}
		return nil, err
	}

	if purchase.Expired(time.Now()) {
		return nil, ErrPackageExpired
	}
	if purchase.RemainingSessions <= 0 {
		return nil, ErrInsufficientSessions
	}

	var pools []models.ServicePool
	if err := l.db.Where("purchase_id = ?", purchaseID).Find(&pools).Error; err != nil {
		return nil, err
	}

	// No pool rows means the package is one undivided pool.
	var pool *models.ServicePool
	if len(pools) > 0 {
		pool = models.PoolFor(pools, serviceName)
		// A service with no pool has a zero balance for this package.
		if pool == nil || pool.Used >= pool.Total {
			return nil, ErrInsufficientSessions
		}
	}

	purchase.UsedSessions++
	purchase.RemainingSessions = purchase.TotalSessions - purchase.UsedSessions
	if err := l.db.Model(&purchase).Updates(map[string]interface{}{
		"used_sessions":      purchase.UsedSessions,
		"remaining_sessions": purchase.RemainingSessions,
	}).Error; err != nil {
		return nil, err
	}

	result := &ConsumeResult{
		PurchaseID:  purchase.ID,
		ServiceName: serviceName,
		Remaining:   purchase.RemainingSessions,
	}

	if pool != nil {
		pool.Used++
		if err := l.db.Model(pool).Update("used", pool.Used).Error; err != nil {
			return nil, err
		}
		poolRemaining := pool.Total - pool.Used
		result.PoolRemaining = &poolRemaining
	}

	return result, nil
}

// PoolAllocation is one entry of a sub-pool definition.
type PoolAllocation struct {
	ServiceName string `json:"serviceName" binding:"required"`
	Total       int    `json:"total" binding:"min=0"`
	Used        int    `json:"used" binding:"min=0"`
}

// Allocate (re)defines the sub-pools of a purchase. Pool totals must add up
// to the package total and no pool may be over-consumed.
func (l *SessionLedger) Allocate(purchaseID uuid.UUID, allocs []PoolAllocation) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var purchase models.PackagePurchase
		if err := lockForUpdate(tx).First(&purchase, "id = ?", purchaseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("package purchase %s: %w", purchaseID, ErrNotFound)
			}
			return err
		}

		if err := validateAllocations(&purchase, allocs); err != nil {
			return err
		}

		if err := tx.Where("purchase_id = ?", purchaseID).Delete(&models.ServicePool{}).Error; err != nil {
			return err
		}
		for _, a := range allocs {
			pool := models.ServicePool{
				PurchaseID:  purchaseID,
				ServiceName: a.ServiceName,
				Total:       a.Total,
				Used:        a.Used,
			}
			if err := tx.Create(&pool).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func validateAllocations(purchase *models.PackagePurchase, allocs []PoolAllocation) error {
	seen := make(map[string]bool, len(allocs))
	sum := 0
	for _, a := range allocs {
		name := strings.TrimSpace(a.ServiceName)
		if name == "" {
			return fmt.Errorf("%w: pool service name must not be empty", ErrValidation)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate pool for service %q", ErrValidation, name)
		}
		seen[key] = true
		if a.Total < 0 || a.Used < 0 {
			return fmt.Errorf("%w: pool counts must not be negative", ErrValidation)
		}
		if a.Used > a.Total {
			return fmt.Errorf("%w: pool %q has used %d > total %d", ErrValidation, name, a.Used, a.Total)
		}
		sum += a.Total
	}
	if sum != purchase.TotalSessions {
		return fmt.Errorf("%w: pool totals add up to %d, package has %d sessions", ErrValidation, sum, purchase.TotalSessions)
	}
	return nil
}
