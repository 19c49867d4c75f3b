package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/veo1/catalog-api/app/api"
	"github.com/veo1/catalog-api/models"
)

type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	Categories  []Category `json:"categories"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// ProductRequest is the body of create and update calls. Leaving out
// "description" or "categories" on update keeps the current value.
// Price is kept raw so that a value which is not a number is reported on
// the price field.
type ProductRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       json.RawMessage `json:"price"`
	Stock       *int            `json:"stock"`
	Categories  []uint          `json:"categories"`
}

// input converts the request. When price is not a number the returned
// ValidationError also lists the other static rule violations.
func (r ProductRequest) input() (models.ProductInput, *models.ValidationError) {
	in := models.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Stock:       r.Stock,
		CategoryIDs: r.Categories,
	}

	price, ok := parsePrice(r.Price)
	if ok {
		in.Price = price
		return in, nil
	}

	verr := in.Validate()
	delete(verr.Fields, "price")
	verr.Add("price", "The price field must be a number.")
	return in, verr
}

// parsePrice accepts a JSON number or a numeric string. A missing or null
// price yields nil.
func parsePrice(raw json.RawMessage) (*decimal.Decimal, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return nil, false
	}
	return &d, true
}

type ProductProvider interface {
	GetFilteredProducts(ctx context.Context, filters models.ProductFilters, p models.Pagination) (models.Page[models.Product], error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, in models.ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type CatalogHandler struct {
	repo ProductProvider
	log  logrus.FieldLogger
}

func NewCatalogHandler(r ProductProvider, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
		log:  log,
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pagination := api.ParsePagination(r)
	filters := parseFilters(r)

	page, err := h.repo.GetFilteredProducts(r.Context(), filters, pagination)
	if err != nil {
		h.log.WithError(err).Error("list products")
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	api.OKResponse(w, http.StatusOK, api.NewPageResponse(page, toProduct))
}

// parseFilters reads the listing filters. Invalid values are ignored.
func parseFilters(r *http.Request) models.ProductFilters {
	q := r.URL.Query()
	filters := models.ProductFilters{
		Search: q.Get("search"),
	}

	if cStr := q.Get("category_id"); cStr != "" {
		if c, err := strconv.ParseUint(cStr, 10, 64); err == nil {
			id := uint(c)
			filters.CategoryID = &id
		}
	}
	if minStr := q.Get("min_price"); minStr != "" {
		if v, err := decimal.NewFromString(minStr); err == nil {
			filters.MinPrice = &v
		}
	}
	if maxStr := q.Get("max_price"); maxStr != "" {
		if v, err := decimal.NewFromString(maxStr); err == nil {
			filters.MaxPrice = &v
		}
	}
	if dStr := q.Get("with_deleted"); dStr != "" {
		if v, err := strconv.ParseBool(dStr); err == nil {
			filters.IncludeDeleted = v
		}
	}

	return filters
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to retrieve product")
		return
	}

	api.OKResponse(w, http.StatusOK, toProduct(*product))
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	in, verr := req.input()
	if verr != nil {
		api.ValidationResponse(w, verr)
		return
	}

	product, err := h.repo.CreateProduct(r.Context(), in)
	if err != nil {
		h.fail(w, err, "Failed to create product")
		return
	}

	api.OKResponse(w, http.StatusCreated, toProduct(*product))
}

func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	var req ProductRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}

	in, verr := req.input()
	if verr != nil {
		// a missing product wins over an invalid body
		if _, err := h.repo.GetByID(r.Context(), id); err != nil {
			h.fail(w, err, "Failed to update product")
			return
		}
		api.ValidationResponse(w, verr)
		return
	}

	product, err := h.repo.UpdateProduct(r.Context(), id, in)
	if err != nil {
		h.fail(w, err, "Failed to update product")
		return
	}

	api.OKResponse(w, http.StatusOK, toProduct(*product))
}

func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	if err := h.repo.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) badRequest(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		api.ValidationResponse(w, verr)
		return
	}
	api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
}

func (h *CatalogHandler) fail(w http.ResponseWriter, err error, message string) {
	var verr *models.ValidationError
	if !errors.Is(err, models.ErrNotFound) && !errors.As(err, &verr) {
		h.log.WithError(err).Error(message)
	}
	api.StoreErrorResponse(w, err, "Product not found", message)
}

func toProduct(p models.Product) Product {
	categories := make([]Category, len(p.Categories))
	for i, c := range p.Categories {
		categories[i] = Category{
			ID:   c.ID,
			Name: c.Name,
		}
	}

	product := Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Categories:  categories,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.DeletedAt.Valid {
		deletedAt := p.DeletedAt.Time
		product.DeletedAt = &deletedAt
	}
	return product
}
