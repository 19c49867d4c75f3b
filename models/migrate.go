package models

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table of the catalog. The join table
// is built from CategoryProduct so its pair stays the primary key.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Product{}, "Categories", &CategoryProduct{}); err != nil {
		return fmt.Errorf("setup category_product join table: %w", err)
	}

	if err := db.AutoMigrate(
		&Category{},
		&Product{},
		&CategoryProduct{},
		&User{},
		&Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
