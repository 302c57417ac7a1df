package database

import (
	"fmt"

	"github.com/citypulse/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres connection and returns the handle. Callers own
// the handle and pass it down explicitly; there is no package-level DB.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Complaint{},
		&models.ComplaintVoter{},
		&models.ComplaintAssignee{},
		&models.StatusHistoryEntry{},
		&models.ActivityLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// One live ticket per place per department. A partial unique index keeps
	// the duplicate-check-then-create race from minting two active tickets
	// for the same location.
	err = db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_active_complaint_location
		 ON complaints (department, location_key)
		 WHERE status <> 'RESOLVED'`,
	).Error
	if err != nil {
		return fmt.Errorf("failed to create active-complaint index: %w", err)
	}

	return nil
}
