package database

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/migueg98/empleo-portal/internal/models"
)

func Connect(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("database connection established")

	// Migration: creates the tables (and the unique (email, job_id)
	// index) in Postgres automatically.
	if err := db.AutoMigrate(&models.Sector{}, &models.JobPosting{}, &models.Candidate{}); err != nil {
		return nil, err
	}

	if err := seedSectors(db, logger); err != nil {
		return nil, err
	}

	return db, nil
}

// seedSectors fills the lookup table on first boot.
func seedSectors(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Sector{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	sectors := []models.Sector{
		{Name: "Hostelería"},
		{Name: "Restauración"},
		{Name: "Administración"},
		{Name: "Logística"},
	}
	if err := db.Create(&sectors).Error; err != nil {
		return err
	}

	logger.Info("seeded sectors", zap.Int("count", len(sectors)))
	return nil
}
