package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationsRepository stores notifications addressed to users.
type NotificationsRepository struct {
	db *gorm.DB
}

func NewNotificationsRepository(db *gorm.DB) *NotificationsRepository {
	return &NotificationsRepository{db: db}
}

// NotifyLowStock stores a low_stock notification for admin about product.
func (r *NotificationsRepository) NotifyLowStock(ctx context.Context, admin User, product Product) error {
	data, err := json.Marshal(LowStockData{
		ProductID:   product.ID,
		ProductName: product.Name,
		Stock:       product.Stock,
	})
	if err != nil {
		return fmt.Errorf("encode low stock notification: %w", err)
	}

	notification := Notification{
		ID:           uuid.New(),
		Type:         NotificationTypeLowStock,
		NotifiableID: admin.ID,
		Data:         datatypes.JSON(data),
	}
	return storeErr("create notification", r.db.WithContext(ctx).Create(&notification).Error)
}

// ListForUser returns the notifications of a user, newest first.
func (r *NotificationsRepository) ListForUser(ctx context.Context, userID uint) ([]Notification, error) {
	var notifications []Notification
	if err := r.db.WithContext(ctx).
		Where("notifiable_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, storeErr("list notifications", err)
	}
	return notifications, nil
}
