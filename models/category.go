package models

import "time"

// Category represents a product category.
// Categories are hard-deleted; their join rows go with them.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) TableName() string {
	return "categories"
}

// CategoryProduct is a row of the category_product join table.
// The composite primary key keeps (product_id, category_id) pairs unique.
type CategoryProduct struct {
	ProductID  uint `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (cp *CategoryProduct) TableName() string {
	return "category_product"
}
