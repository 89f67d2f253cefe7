package services

import (
	"testing"
	"time"

	"wellness-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion_WithPackage(t *testing.T) {
	setBusinessHours(t)
	db := newTestDB(t)
	catalog := seedServiceCatalog(t, db)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 10", 10, 0)
	svc := newTestReservationService(db)

	today := date(2026, time.June, 1)
	reservation, err := svc.Create(CreateReservationInput{
		CustomerID:    customer.ID,
		ServiceTypeID: catalog["Lymph"].ID,
		PurchaseID:    &purchase.ID,
		Date:          today,
		Time:          "10:00",
	})
	require.NoError(t, err)

	completed, err := svc.Complete(reservation.ID, "full course, light pressure")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCompleted, completed.Status)

	// One session drawn from the ledger.
	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 1, stored.UsedSessions)
	assert.Equal(t, 9, stored.RemainingSessions)

	// Numbered usage row.
	var usage models.ServiceUsage
	require.NoError(t, db.Where("reservation_id = ?", reservation.ID).First(&usage).Error)
	assert.Equal(t, 1, usage.SessionNumber)
	assert.Equal(t, "full course, light pressure", usage.Detail)

	// Customer rollup.
	var rolledUp models.Customer
	require.NoError(t, db.First(&rolledUp, "id = ?", customer.ID).Error)
	assert.Equal(t, 1, rolledUp.TotalVisits)
	require.NotNil(t, rolledUp.LastVisitDate)
	assert.True(t, rolledUp.LastVisitDate.Equal(today))

	// Post-commit thank-you message recorded.
	var logEntry models.DeliveryLog
	require.NoError(t, db.Where("reservation_id = ? AND kind = ?", reservation.ID, KindCompletion).First(&logEntry).Error)
}

func TestCompletion_SessionNumbersAreSequential(t *testing.T) {
	setBusinessHours(t)
	db := newTestDB(t)
	catalog := seedServiceCatalog(t, db)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 10", 10, 0)
	svc := newTestReservationService(db)

	times := []string{"10:00", "11:00", "12:00"}
	for i, clock := range times {
		reservation, err := svc.Create(CreateReservationInput{
			CustomerID:    customer.ID,
			ServiceTypeID: catalog["Lymph"].ID,
			PurchaseID:    &purchase.ID,
			Date:          date(2026, time.June, 1+i),
			Time:          clock,
		})
		require.NoError(t, err)

		_, err = svc.Complete(reservation.ID, "")
		require.NoError(t, err)
	}

	var numbers []int
	require.NoError(t, db.Model(&models.ServiceUsage{}).
		Where("purchase_id = ?", purchase.ID).
		Order("session_number ASC").
		Pluck("session_number", &numbers).Error)
	assert.Equal(t, []int{1, 2, 3}, numbers)
}

func TestCompletion_WithoutPackage(t *testing.T) {
	setBusinessHours(t)
	db := newTestDB(t)
	catalog := seedServiceCatalog(t, db)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	svc := newTestReservationService(db)

	reservation, err := svc.Create(CreateReservationInput{
		CustomerID:    customer.ID,
		ServiceTypeID: catalog["Massage"].ID,
		Date:          date(2026, time.June, 1),
		Time:          "10:00",
	})
	require.NoError(t, err)

	_, err = svc.Complete(reservation.ID, "walk-in, paid cash")
	require.NoError(t, err)

	var usage models.ServiceUsage
	require.NoError(t, db.Where("reservation_id = ?", reservation.ID).First(&usage).Error)
	assert.Nil(t, usage.PurchaseID)
	assert.Zero(t, usage.SessionNumber, "pay-per-visit sessions are not numbered")

	var rolledUp models.Customer
	require.NoError(t, db.First(&rolledUp, "id = ?", customer.ID).Error)
	assert.Equal(t, 1, rolledUp.TotalVisits, "visits count regardless of payment method")
}

func TestCompletion_InsufficientSessions_RollsBackEverything(t *testing.T) {
	// GIVEN: a package with one session left and two reservations against it
	// WHEN: both complete
	// THEN: the first draws the last session and the second fails whole,
	//       leaving its reservation, the ledger and the customer untouched

	setBusinessHours(t)
	db := newTestDB(t)
	catalog := seedServiceCatalog(t, db)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 20", 20, 19)
	svc := newTestReservationService(db)

	first, err := svc.Create(CreateReservationInput{
		CustomerID:    customer.ID,
		ServiceTypeID: catalog["Lymph"].ID,
		PurchaseID:    &purchase.ID,
		Date:          date(2026, time.June, 1),
		Time:          "10:00",
	})
	require.NoError(t, err)
	second, err := svc.Create(CreateReservationInput{
		CustomerID:    customer.ID,
		ServiceTypeID: catalog["Lymph"].ID,
		PurchaseID:    &purchase.ID,
		Date:          date(2026, time.June, 1),
		Time:          "11:00",
	})
	require.NoError(t, err)

	_, err = svc.Complete(first.ID, "")
	require.NoError(t, err)

	_, err = svc.Complete(second.ID, "")
	assert.ErrorIs(t, err, ErrInsufficientSessions)

	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 0, stored.RemainingSessions, "balance stops at zero")

	var untouched models.Reservation
	require.NoError(t, db.First(&untouched, "id = ?", second.ID).Error)
	assert.Equal(t, models.ReservationPending, untouched.Status, "failed completion leaves the reservation active")

	var usageCount int64
	db.Model(&models.ServiceUsage{}).Where("reservation_id = ?", second.ID).Count(&usageCount)
	assert.Zero(t, usageCount, "no usage row survives the rollback")

	var rolledUp models.Customer
	require.NoError(t, db.First(&rolledUp, "id = ?", customer.ID).Error)
	assert.Equal(t, 1, rolledUp.TotalVisits, "only the successful completion counts")
}

func TestCompletion_DoubleComplete_DrawsExactlyOnce(t *testing.T) {
	setBusinessHours(t)
	db := newTestDB(t)
	catalog := seedServiceCatalog(t, db)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 10", 10, 0)
	svc := newTestReservationService(db)

	reservation, err := svc.Create(CreateReservationInput{
		CustomerID:    customer.ID,
		ServiceTypeID: catalog["Lymph"].ID,
		PurchaseID:    &purchase.ID,
		Date:          date(2026, time.June, 1),
		Time:          "10:00",
	})
	require.NoError(t, err)

	_, err = svc.Complete(reservation.ID, "")
	require.NoError(t, err)

	_, err = svc.Complete(reservation.ID, "")
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.ReservationCompleted, transition.State)

	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 1, stored.UsedSessions, "the retry must not draw a second session")
}

func TestCompletion_CancelAfterComplete_LeavesLedgerAlone(t *testing.T) {
	setBusinessHours(t)
	db := newTestDB(t)
	catalog := seedServiceCatalog(t, db)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph 10", 10, 0)
	svc := newTestReservationService(db)

	reservation, err := svc.Create(CreateReservationInput{
		CustomerID:    customer.ID,
		ServiceTypeID: catalog["Lymph"].ID,
		PurchaseID:    &purchase.ID,
		Date:          date(2026, time.June, 1),
		Time:          "10:00",
	})
	require.NoError(t, err)
	_, err = svc.Complete(reservation.ID, "")
	require.NoError(t, err)

	_, err = svc.Cancel(reservation.ID, "changed my mind")
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)

	stored := requireLedgerInvariant(t, db, purchase.ID)
	assert.Equal(t, 1, stored.UsedSessions, "cancellation never refunds a completed draw")

	var current models.Reservation
	require.NoError(t, db.First(&current, "id = ?", reservation.ID).Error)
	assert.Equal(t, models.ReservationCompleted, current.Status)
}

func TestCompletion_ConsumesFromDesignatedPool(t *testing.T) {
	setBusinessHours(t)
	db := newTestDB(t)
	catalog := seedServiceCatalog(t, db)
	customer := seedCustomer(t, db, "Mina Park", "+821011110001")
	purchase := seedPurchase(t, db, customer.ID, "Lymph + Massage 10", 10, 0)
	require.NoError(t, NewSessionLedger(db).Allocate(purchase.ID, []PoolAllocation{
		{ServiceName: "Lymph", Total: 6},
		{ServiceName: "Massage", Total: 4},
	}))
	svc := newTestReservationService(db)

	reservation, err := svc.Create(CreateReservationInput{
		CustomerID:    customer.ID,
		ServiceTypeID: catalog["Massage"].ID,
		PurchaseID:    &purchase.ID,
		Date:          date(2026, time.June, 1),
		Time:          "10:00",
	})
	require.NoError(t, err)

	_, err = svc.Complete(reservation.ID, "")
	require.NoError(t, err)

	var pool models.ServicePool
	require.NoError(t, db.Where("purchase_id = ? AND service_name = ?", purchase.ID, "Massage").First(&pool).Error)
	assert.Equal(t, 1, pool.Used, "the draw lands in the pool of the reserved service")
	requireLedgerInvariant(t, db, purchase.ID)
}
