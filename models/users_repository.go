package models

import (
	"context"

	"gorm.io/gorm"
)

type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// ListAdmins returns every administrator, oldest account first.
func (r *UsersRepository) ListAdmins(ctx context.Context) ([]User, error) {
	var admins []User
	if err := r.db.WithContext(ctx).
		Where("is_admin = ?", true).
		Order("id ASC").
		Find(&admins).Error; err != nil {
		return nil, storeErr("list admins", err)
	}
	return admins, nil
}

func (r *UsersRepository) CreateUser(ctx context.Context, user *User) error {
	return storeErr("create user", r.db.WithContext(ctx).Create(user).Error)
}
