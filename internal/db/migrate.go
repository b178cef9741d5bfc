package db

import (
	"fmt"

	"expense_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"gorm.io/gorm" // GORM ORM library
)

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Expense{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logrus.Debug("Migration completed.")
	return nil
}
