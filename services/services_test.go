package services

import (
	"testing"
	"time"

	"wellness-backend/config"
	"wellness-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a different :memory: database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.ServiceType{},
		&models.PackagePurchase{},
		&models.ServicePool{},
		&models.ServiceUsage{},
		&models.Reservation{},
		&models.DeliveryLog{},
	))
	require.NoError(t, config.EnsureIndexes(db))

	return db
}

func seedServiceCatalog(t *testing.T, db *gorm.DB) map[string]models.ServiceType {
	catalog := make(map[string]models.ServiceType, len(models.DefaultServiceNames))
	for _, name := range models.DefaultServiceNames {
		serviceType := models.ServiceType{Name: name, Duration: 60, IsActive: true}
		require.NoError(t, db.Create(&serviceType).Error)
		catalog[name] = serviceType
	}
	return catalog
}

func seedCustomer(t *testing.T, db *gorm.DB, name, phone string) *models.Customer {
	customer := models.Customer{Name: name, Phone: phone, Status: models.CustomerDormant, IsActive: true}
	require.NoError(t, db.Create(&customer).Error)
	return &customer
}

func seedPurchase(t *testing.T, db *gorm.DB, customerID uuid.UUID, name string, total, used int) *models.PackagePurchase {
	purchase := models.PackagePurchase{
		CustomerID:        customerID,
		Name:              name,
		TotalSessions:     total,
		UsedSessions:      used,
		RemainingSessions: total - used,
		PurchaseDate:      time.Now(),
	}
	require.NoError(t, db.Create(&purchase).Error)
	return &purchase
}

func newTestReservationService(db *gorm.DB) *ReservationService {
	return NewReservationService(db, NewLogGateway(db))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// requireLedgerInvariant checks used + remaining == total on the stored row.
func requireLedgerInvariant(t *testing.T, db *gorm.DB, purchaseID uuid.UUID) *models.PackagePurchase {
	var purchase models.PackagePurchase
	require.NoError(t, db.First(&purchase, "id = ?", purchaseID).Error)
	require.Equal(t, purchase.TotalSessions, purchase.UsedSessions+purchase.RemainingSessions,
		"used + remaining must equal total")
	return &purchase
}
