package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/veo1/catalog-api/models"
)

// ErrInvalidJSON is returned by DecodeJSON for a body that is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON body")

// DecodeJSON decodes the request body into dst. A value of the wrong JSON type
// becomes a ValidationError on that field; other failures are ErrInvalidJSON.
func DecodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		verr := &models.ValidationError{}
		verr.Add(typeErr.Field, fmt.Sprintf("The %s field must be %s.", typeErr.Field, describeKind(typeErr.Type.Kind().String())))
		return verr
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: empty body", ErrInvalidJSON)
	}
	return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
}

func describeKind(kind string) string {
	switch kind {
	case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
		return "an integer"
	case "string":
		return "a string"
	case "slice", "array":
		return "an array"
	default:
		return "a number"
	}
}

// PathID parses the {id} path value. ok is false for anything but a positive integer.
func PathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParsePagination reads page and per_page, ignoring invalid values.
func ParsePagination(r *http.Request) models.Pagination {
	var p models.Pagination
	if pStr := r.URL.Query().Get("page"); pStr != "" {
		if v, err := strconv.Atoi(pStr); err == nil {
			p.Page = v
		}
	}
	if sStr := r.URL.Query().Get("per_page"); sStr != "" {
		if v, err := strconv.Atoi(sStr); err == nil {
			p.PageSize = v
		}
	}
	return p.Normalize()
}
