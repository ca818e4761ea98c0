package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vgroup-backoffice/internal/database/models"
)

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// Migrate creates or updates every table. Parents come before children so
// foreign keys can be created in one pass.
func Migrate(db *gorm.DB) error {
	stages := [][]interface{}{
		{&models.User{}, &models.Province{}, &models.District{}},
		{&models.Agent{}, &models.Client{}},
		{&models.Worker{}},
		{&models.Loan{}, &models.Commission{}, &models.SosAlert{}, &models.Order{}, &models.Document{}},
		{&models.Payment{}},
		{&models.CmsPage{}, &models.CmsSection{}, &models.CmsFaq{}, &models.CmsMedia{},
			&models.CmsPartner{}, &models.CmsBlogPost{}, &models.CmsEstate{}},
	}

	for _, stage := range stages {
		for _, model := range stage {
			if err := db.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
	}
	return nil
}
