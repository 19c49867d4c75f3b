package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the catalog.
// A non-null DeletedAt marks the product as soft-deleted; default queries skip it.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null"`
	Categories  []Category      `gorm:"many2many:category_product"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (p *Product) TableName() string {
	return "products"
}

// CategoryIDs returns the ids of the loaded categories.
func (p *Product) CategoryIDs() []uint {
	ids := make([]uint, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}

// ProductAction tags a ProductChanged event.
type ProductAction string

const (
	ProductCreated ProductAction = "created"
	ProductUpdated ProductAction = "updated"
)

// ProductChanged is emitted after a product was created or updated.
// Product is a copy; sinks cannot mutate the repository's result.
type ProductChanged struct {
	Product Product
	Action  ProductAction
}
