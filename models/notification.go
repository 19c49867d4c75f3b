package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const NotificationTypeLowStock = "low_stock"

// Notification is a message stored for a user, read back by the back office.
type Notification struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Type         string         `gorm:"size:64;not null"`
	NotifiableID uint           `gorm:"not null;index"`
	Data         datatypes.JSON `gorm:"not null"`
	ReadAt       *time.Time
	CreatedAt    time.Time
}

func (n *Notification) TableName() string {
	return "notifications"
}

// LowStockData is the payload of a low_stock notification.
type LowStockData struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
}
