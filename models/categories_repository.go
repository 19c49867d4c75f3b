package models

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewCategoriesRepository(db *gorm.DB, log logrus.FieldLogger) *CategoriesRepository {
	return &CategoriesRepository{
		db:  db,
		log: log,
	}
}

// ListCategories returns one page of categories in insertion order.
func (r *CategoriesRepository) ListCategories(ctx context.Context, p Pagination) (Page[Category], error) {
	p = p.Normalize()
	page := Page[Category]{CurrentPage: p.Page, PerPage: p.PageSize}

	if err := r.db.WithContext(ctx).Model(&Category{}).Count(&page.Total).Error; err != nil {
		return page, storeErr("count categories", err)
	}

	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&page.Items).Error; err != nil {
		return page, storeErr("list categories", err)
	}

	return page, nil
}

func (r *CategoriesRepository) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	category := &Category{Name: in.Name}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, storeErr("create category", err)
	}

	r.log.WithField("category_id", category.ID).Info("category created")
	return category, nil
}

func (r *CategoriesRepository) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storeErr("get category", err)
	}
	return &category, nil
}

// UpdateCategory renames a category. A missing category wins over invalid input.
func (r *CategoriesRepository) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*Category, error) {
	category, err := r.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	category.Name = in.Name
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return nil, storeErr("update category", err)
	}
	return category, nil
}

// DeleteCategory removes the category and every join row pointing at it.
// Products linked to it survive without that category.
func (r *CategoriesRepository) DeleteCategory(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&CategoryProduct{}).Error; err != nil {
			return storeErr("detach category", err)
		}

		res := tx.Delete(&Category{}, id)
		if res.Error != nil {
			return storeErr("delete category", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.WithField("category_id", id).Info("category deleted")
	return nil
}
