package database

import (
	"gorm.io/gorm"

	"github.com/crewlinkhq/crewlink/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
// The invitation composite unique index and the job record's unique
// invitation reference are declared on the models and created here; the
// conditional-write paths in the services depend on them.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.Worker{},
		&models.Project{},
		&models.Invitation{},
		&models.JobRecord{},
		&models.Notification{},
	)
}
