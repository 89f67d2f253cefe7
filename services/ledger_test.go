package services

import (
	"testing"
	"time"

	"wellness-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONSUME - UNDIVIDED PACKAGES
// =============================================================================

func TestLedger_Consume_DecrementsBalance(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 10", 10, 3)

	ledger := NewSessionLedger(db)
	result, err := ledger.Consume(purchase.ID, "Lymph")
	require.NoError(t, err)

	assert.Equal(t, 6, result.Remaining)
	assert.Nil(t, result.PoolRemaining, "undivided package has no pool balance")

	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 4, stored.UsedSessions)
	assert.Equal(t, 6, stored.RemainingSessions)
}

func TestLedger_Consume_ExhaustedPackage_Rejected(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 10", 10, 10)

	ledger := NewSessionLedger(db)
	_, err := ledger.Consume(purchase.ID, "Lymph")

	assert.ErrorIs(t, err, ErrInsufficientSessions)

	// State must be untouched on failure.
	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 10, stored.UsedSessions)
	assert.Equal(t, 0, stored.RemainingSessions)
}

func TestLedger_Consume_NeverGoesNegative(t *testing.T) {
	// GIVEN: a package with a single remaining session
	// WHEN: consuming twice
	// THEN: exactly one draw succeeds and the balance stops at zero

	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 20", 20, 19)

	ledger := NewSessionLedger(db)
	_, err := ledger.Consume(purchase.ID, "Lymph")
	require.NoError(t, err)

	_, err = ledger.Consume(purchase.ID, "Lymph")
	assert.ErrorIs(t, err, ErrInsufficientSessions)

	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 0, stored.RemainingSessions)
}

func TestLedger_Consume_ExpiredPackage_Rejected(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 10", 10, 0)

	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(purchase).Update("expiry_date", &yesterday).Error)

	ledger := NewSessionLedger(db)
	_, err := ledger.Consume(purchase.ID, "Lymph")
	assert.ErrorIs(t, err, ErrPackageExpired)
}

func TestLedger_Consume_UnknownPurchase(t *testing.T) {
	db := newTestDB(t)
	ledger := NewSessionLedger(db)

	_, err := ledger.Consume(uuid.New(), "Lymph")
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// CONSUME - SUB-POOLS
// =============================================================================

func TestLedger_Consume_DrawsFromMatchingPool(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph + Massage 10", 10, 0)

	ledger := NewSessionLedger(db)
	require.NoError(t, ledger.Allocate(purchase.ID, []PoolAllocation{
		{ServiceName: "Lymph", Total: 6},
		{ServiceName: "Massage", Total: 4},
	}))

	result, err := ledger.Consume(purchase.ID, "Massage")
	require.NoError(t, err)

	assert.Equal(t, 9, result.Remaining)
	require.NotNil(t, result.PoolRemaining)
	assert.Equal(t, 3, *result.PoolRemaining)

	var pools []models.ServicePool
	require.NoError(t, db.Where("purchase_id = ?", purchase.ID).Order("service_name ASC").Find(&pools).Error)
	assert.Equal(t, 0, pools[0].Used, "Lymph pool untouched")
	assert.Equal(t, 1, pools[1].Used, "Massage pool decremented")
	requireLedgerInvariant(t, db, purchase.ID)
}

func TestLedger_Consume_ExhaustedPool_RejectedEvenWithBalanceLeft(t *testing.T) {
	// The package still has Massage sessions, but the Lymph pool is empty.
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph + Massage 10", 10, 0)

	ledger := NewSessionLedger(db)
	require.NoError(t, ledger.Allocate(purchase.ID, []PoolAllocation{
		{ServiceName: "Lymph", Total: 2},
		{ServiceName: "Massage", Total: 8},
	}))

	for i := 0; i < 2; i++ {
		_, err := ledger.Consume(purchase.ID, "Lymph")
		require.NoError(t, err)
	}

	_, err := ledger.Consume(purchase.ID, "Lymph")
	assert.ErrorIs(t, err, ErrInsufficientSessions)

	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 8, stored.RemainingSessions, "failed draw must not touch the package balance")
}

func TestLedger_Consume_ServiceWithoutPool_Rejected(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph only", 10, 0)

	ledger := NewSessionLedger(db)
	require.NoError(t, ledger.Allocate(purchase.ID, []PoolAllocation{
		{ServiceName: "Lymph", Total: 10},
	}))

	_, err := ledger.Consume(purchase.ID, "Skincare")
	assert.ErrorIs(t, err, ErrInsufficientSessions)
}

// =============================================================================
// ALLOCATE
// =============================================================================

func TestLedger_Allocate_Validation(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Combo 10", 10, 0)

	ledger := NewSessionLedger(db)

	cases := []struct {
		name   string
		allocs []PoolAllocation
	}{
		{"sum below total", []PoolAllocation{{ServiceName: "Lymph", Total: 4}, {ServiceName: "Massage", Total: 4}}},
		{"sum above total", []PoolAllocation{{ServiceName: "Lymph", Total: 8}, {ServiceName: "Massage", Total: 8}}},
		{"used over total", []PoolAllocation{{ServiceName: "Lymph", Total: 10, Used: 11}}},
		{"duplicate service", []PoolAllocation{{ServiceName: "Lymph", Total: 5}, {ServiceName: "lymph", Total: 5}}},
		{"blank service", []PoolAllocation{{ServiceName: "  ", Total: 10}}},
		{"negative total", []PoolAllocation{{ServiceName: "Lymph", Total: -2}, {ServiceName: "Massage", Total: 12}}},
		{"empty definition", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.Allocate(purchase.ID, tc.allocs)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Nothing may have been persisted by the rejected attempts.
	var count int64
	db.Model(&models.ServicePool{}).Where("purchase_id = ?", purchase.ID).Count(&count)
	assert.Zero(t, count)
}

func TestLedger_Allocate_ReplacesExistingPools(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Combo 12", 12, 0)

	ledger := NewSessionLedger(db)
	require.NoError(t, ledger.Allocate(purchase.ID, []PoolAllocation{
		{ServiceName: "Lymph", Total: 6},
		{ServiceName: "Massage", Total: 6},
	}))
	require.NoError(t, ledger.Allocate(purchase.ID, []PoolAllocation{
		{ServiceName: "Lymph", Total: 4},
		{ServiceName: "Massage", Total: 4},
		{ServiceName: "Skincare", Total: 4},
	}))

	var pools []models.ServicePool
	require.NoError(t, db.Where("purchase_id = ?", purchase.ID).Find(&pools).Error)
	assert.Len(t, pools, 3)

	sum := 0
	for _, p := range pools {
		assert.LessOrEqual(t, p.Used, p.Total)
		sum += p.Total
	}
	assert.Equal(t, purchase.TotalSessions, sum, "pool totals must add up to the package total")
}

func TestLedger_Allocate_UnknownPurchase(t *testing.T) {
	db := newTestDB(t)
	ledger := NewSessionLedger(db)

	err := ledger.Allocate(uuid.New(), []PoolAllocation{{ServiceName: "Lymph", Total: 1}})
	assert.ErrorIs(t, err, ErrNotFound)
}
