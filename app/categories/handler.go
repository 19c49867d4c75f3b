package categories

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/veo1/catalog-api/app/api"
	"github.com/veo1/catalog-api/models"
)

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategoryRequest struct {
	Name string `json:"name"`
}

type CategoryProvider interface {
	ListCategories(ctx context.Context, p models.Pagination) (models.Page[models.Category], error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uint, in models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	repo CategoryProvider
	log  logrus.FieldLogger
}

func NewCategoryHandler(r CategoryProvider, log logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{repo: r, log: log}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	page, err := h.repo.ListCategories(r.Context(), api.ParsePagination(r))
	if err != nil {
		h.log.WithError(err).Error("list categories")
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	api.OKResponse(w, http.StatusOK, api.NewPageResponse(page, toResponse))
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}

	category, err := h.repo.GetCategory(r.Context(), id)
	if err != nil {
		h.fail(w, err, "Failed to retrieve category")
		return
	}

	api.OKResponse(w, http.StatusOK, toResponse(*category))
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input CategoryRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		h.badRequest(w, err)
		return
	}

	category, err := h.repo.CreateCategory(r.Context(), models.CategoryInput{Name: input.Name})
	if err != nil {
		h.fail(w, err, "Failed to create category")
		return
	}

	api.OKResponse(w, http.StatusCreated, toResponse(*category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}

	var input CategoryRequest
	if err := api.DecodeJSON(r, &input); err != nil {
		h.badRequest(w, err)
		return
	}

	category, err := h.repo.UpdateCategory(r.Context(), id, models.CategoryInput{Name: input.Name})
	if err != nil {
		h.fail(w, err, "Failed to update category")
		return
	}

	api.OKResponse(w, http.StatusOK, toResponse(*category))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := api.PathID(r)
	if !ok {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}

	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		h.fail(w, err, "Failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) badRequest(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		api.ValidationResponse(w, verr)
		return
	}
	api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
}

func (h *CategoryHandler) fail(w http.ResponseWriter, err error, message string) {
	var verr *models.ValidationError
	if !errors.Is(err, models.ErrNotFound) && !errors.As(err, &verr) {
		h.log.WithError(err).Error(message)
	}
	api.StoreErrorResponse(w, err, "Category not found", message)
}

func toResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:   c.ID,
		Name: c.Name,
	}
}
