package db

import (
	"fmt"

	"gorm.io/gorm"

	"dtbank/internal/model"
)

// Migrate creates or updates the customers table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Account{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops the customers table. Data is lost.
func Reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&model.Account{}); err != nil {
		return fmt.Errorf("drop customers: %w", err)
	}
	return nil
}
