package config

import (
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")

	// TranslateError turns driver unique violations into gorm.ErrDuplicatedKey,
	// which the reservation service relies on for its slot race guard.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		panic("Failed to connect database")
	}

	DB = db
}

// EnsureIndexes creates the partial unique indexes guarding the active
// reservation slot keys. A plain check-then-insert is racy under concurrent
// requests; these indexes make the database the arbiter. Only rows in
// pending/confirmed state occupy a slot, so the indexes ignore terminal and
// soft-deleted rows.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_slot_service
		   ON reservations (reservation_date, reservation_time, service_type_id)
		   WHERE status IN ('pending','confirmed') AND deleted_at IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_slot_staff
		   ON reservations (reservation_date, reservation_time, staff_id)
		   WHERE staff_id IS NOT NULL AND status IN ('pending','confirmed') AND deleted_at IS NULL`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
