package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is matched by every "entity missing" error of this package.
var ErrNotFound = errors.New("not found")

var (
	// ErrProductNotFound is returned when a product is missing or soft-deleted.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrCategoryNotFound is returned when a category is missing.
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
)

// ValidationError carries every violated rule of an input, keyed by field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, " ")
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Has reports whether field has at least one message.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// OrNil returns nil when no rule was violated, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// StoreError wraps a failure of the underlying database.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
