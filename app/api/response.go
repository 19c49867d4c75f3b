package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veo1/catalog-api/models"
)

// Envelope wraps every successful payload.
type Envelope struct {
	StatusCode int `json:"statusCode"`
	Data       any `json:"data"`
}

// PageResponse is the JSON form of a paginated listing.
type PageResponse[T any] struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	Data        []T   `json:"data"`
}

// NewPageResponse converts a page of models with the given mapper.
func NewPageResponse[M, T any](page models.Page[M], convert func(M) T) PageResponse[T] {
	data := make([]T, len(page.Items))
	for i, item := range page.Items {
		data[i] = convert(item)
	}
	return PageResponse[T]{
		CurrentPage: page.CurrentPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
		LastPage:    page.LastPage(),
		Data:        data,
	}
}

func OKResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{StatusCode: status, Data: data})
}

func ErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ValidationResponse answers 422 with the per-field messages.
func ValidationResponse(w http.ResponseWriter, verr *models.ValidationError) {
	OKResponse(w, http.StatusUnprocessableEntity, verr.Fields)
}

// StoreErrorResponse maps a repository error onto a response. notFound is the
// message used for models.ErrNotFound, fallback the one for anything else.
func StoreErrorResponse(w http.ResponseWriter, err error, notFound, fallback string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		ValidationResponse(w, verr)
	case errors.Is(err, models.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, notFound)
	default:
		ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
