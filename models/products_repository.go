package models

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationSink receives product change events. A failing sink never fails
// the operation that emitted the event.
type NotificationSink interface {
	OnProductChanged(ctx context.Context, event ProductChanged) error
}

// SinkFunc adapts a function to NotificationSink.
type SinkFunc func(ctx context.Context, event ProductChanged) error

func (f SinkFunc) OnProductChanged(ctx context.Context, event ProductChanged) error {
	return f(ctx, event)
}

type ProductsRepository struct {
	db    *gorm.DB
	log   logrus.FieldLogger
	sinks []NotificationSink
}

// ProductFilters narrows a product listing; set filters are ANDed. Search is
// matched case-insensitively against name or description. MinPrice and
// MaxPrice are inclusive and are not swapped when inverted.
type ProductFilters struct {
	Search         string
	CategoryID     *uint
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	IncludeDeleted bool
}

// NewProductsRepository builds the repository with its fixed set of sinks.
func NewProductsRepository(db *gorm.DB, log logrus.FieldLogger, sinks ...NotificationSink) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		log:   log,
		sinks: sinks,
	}
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, filters ProductFilters, p Pagination) (Page[Product], error) {
	p = p.Normalize()
	page := Page[Product]{CurrentPage: p.Page, PerPage: p.PageSize}

	// Count total after filtering
	if err := r.filtered(ctx, filters).Count(&page.Total).Error; err != nil {
		return page, storeErr("count products", err)
	}

	if err := r.filtered(ctx, filters).
		Preload("Categories", orderCategories).
		Order("products.id ASC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&page.Items).Error; err != nil {
		return page, storeErr("list products", err)
	}

	return page, nil
}

func (r *ProductsRepository) filtered(ctx context.Context, f ProductFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&Product{})
	if f.IncludeDeleted {
		query = query.Unscoped()
	}

	// SQLite's LOWER folds ASCII letters only, so non-ASCII search there is
	// case-sensitive.
	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		query = query.Where(
			"(LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(products.description, '')) LIKE ? ESCAPE '\\')",
			pattern, pattern,
		)
	}
	if f.CategoryID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM category_product cp WHERE cp.product_id = products.id AND cp.category_id = ?)",
			*f.CategoryID,
		)
	}
	if f.MinPrice != nil {
		query = query.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("products.price <= ?", *f.MaxPrice)
	}
	return query
}

// GetByID returns a live product with its categories.
func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Categories", orderCategories).
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storeErr("get product", err) // Other DB error
	}
	return &product, nil
}

// CreateProduct persists the product and attaches its categories in one
// transaction, then emits a ProductCreated event.
func (r *ProductsRepository) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var id uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateProduct(tx, in); err != nil {
			return err
		}

		product := Product{
			Name:        in.Name,
			Description: deref(in.Description),
			Price:       *in.Price,
			Stock:       *in.Stock,
		}
		if err := tx.Omit(clause.Associations).Create(&product).Error; err != nil {
			return storeErr("create product", err)
		}
		id = product.ID

		return attachCategories(tx, id, in.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.dispatch(ctx, ProductChanged{Product: *created, Action: ProductCreated})
	return created, nil
}

// UpdateProduct overwrites the product fields. When in.CategoryIDs is non-nil
// the association set is replaced by it. Emits a ProductUpdated event.
func (r *ProductsRepository) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*Product, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateProduct(tx, in); err != nil {
			return err
		}

		fields := map[string]any{
			"name":  in.Name,
			"price": *in.Price,
			"stock": *in.Stock,
		}
		if in.Description != nil {
			fields["description"] = *in.Description
		}

		res := tx.Model(&Product{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return storeErr("update product", res.Error)
		}
		if res.RowsAffected == 0 {
			// soft-deleted after the lookup above
			return ErrProductNotFound
		}

		if in.CategoryIDs == nil {
			return nil
		}
		return syncCategories(tx, id, in.CategoryIDs)
	})
	if err != nil {
		return nil, err
	}

	updated, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.dispatch(ctx, ProductChanged{Product: *updated, Action: ProductUpdated})
	return updated, nil
}

// DeleteProduct soft-deletes the product. Its category links are kept.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return storeErr("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}

	r.log.WithField("product_id", id).Info("product soft-deleted")
	return nil
}

// LowStockProducts returns the live products whose stock is below threshold.
func (r *ProductsRepository) LowStockProducts(ctx context.Context, threshold int) ([]Product, error) {
	var products []Product
	if err := r.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, storeErr("list low stock products", err)
	}
	return products, nil
}

func (r *ProductsRepository) dispatch(ctx context.Context, event ProductChanged) {
	event.Product.Categories = slices.Clone(event.Product.Categories)
	for _, sink := range r.sinks {
		r.notify(ctx, sink, event)
	}
}

func (r *ProductsRepository) notify(ctx context.Context, sink NotificationSink, event ProductChanged) {
	entry := r.log.WithFields(logrus.Fields{
		"product_id": event.Product.ID,
		"action":     event.Action,
	})

	defer func() {
		if rec := recover(); rec != nil {
			entry.Errorf("product sink panicked: %v", rec)
		}
	}()

	if err := sink.OnProductChanged(ctx, event); err != nil {
		entry.WithError(err).Error("product sink failed")
	}
}

func validateProduct(tx *gorm.DB, in ProductInput) error {
	verr := in.Validate()

	found, err := existingCategoryIDs(tx, in.CategoryIDs)
	if err != nil {
		return err
	}
	for i, id := range in.CategoryIDs {
		if !found[id] {
			verr.Add(invalidCategoryMessage(i))
		}
	}

	return verr.OrNil()
}

func existingCategoryIDs(tx *gorm.DB, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var existing []uint
	if err := tx.Model(&Category{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, storeErr("lookup categories", err)
	}
	for _, id := range existing {
		found[id] = true
	}
	return found, nil
}

// attachCategories links the categories to the product, ignoring pairs that
// already exist.
func attachCategories(tx *gorm.DB, productID uint, categoryIDs []uint) error {
	rows := make([]CategoryProduct, 0, len(categoryIDs))
	seen := make(map[uint]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, CategoryProduct{ProductID: productID, CategoryID: id})
	}
	if len(rows) == 0 {
		return nil
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return storeErr("attach categories", err)
	}
	return nil
}

// syncCategories replaces the product's category set.
func syncCategories(tx *gorm.DB, productID uint, categoryIDs []uint) error {
	if err := tx.Where("product_id = ?", productID).Delete(&CategoryProduct{}).Error; err != nil {
		return storeErr("detach categories", err)
	}
	return attachCategories(tx, productID, categoryIDs)
}

func orderCategories(db *gorm.DB) *gorm.DB {
	return db.Order("categories.id ASC")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
