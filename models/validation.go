package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const maxNameLength = 255

// Prices are stored as DECIMAL(10, 2).
const priceScale = 2

var maxPrice = decimal.RequireFromString("99999999.99")

// CategoryInput holds the writable fields of a category.
type CategoryInput struct {
	Name string
}

// Validate checks the static rules of a category.
func (in CategoryInput) Validate() error {
	verr := &ValidationError{}
	validateName(verr, "name", in.Name)
	return verr.OrNil()
}

// ProductInput holds the writable fields of a product.
// Price and Stock are pointers so a missing value can be told apart from zero.
// A nil Description or CategoryIDs leaves the stored value alone on update;
// an empty string or a non-nil empty slice clears it.
type ProductInput struct {
	Name        string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryIDs []uint
}

// Validate checks the rules that need no database access. Category existence
// is checked by the repository.
func (in ProductInput) Validate() *ValidationError {
	verr := &ValidationError{}
	validateName(verr, "name", in.Name)

	switch {
	case in.Price == nil:
		verr.Add("price", "The price field is required.")
	case in.Price.IsNegative():
		verr.Add("price", "The price field must be at least 0.")
	case in.Price.GreaterThan(maxPrice):
		verr.Add("price", fmt.Sprintf("The price field must not be greater than %s.", maxPrice))
	case !in.Price.Truncate(priceScale).Equal(*in.Price):
		verr.Add("price", fmt.Sprintf("The price field must have at most %d decimal places.", priceScale))
	}

	switch {
	case in.Stock == nil:
		verr.Add("stock", "The stock field is required.")
	case *in.Stock < 0:
		verr.Add("stock", "The stock field must be at least 0.")
	}

	return verr
}

func validateName(verr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.Add(field, fmt.Sprintf("The %s field is required.", field))
		return
	}
	if utf8.RuneCountInString(value) > maxNameLength {
		verr.Add(field, fmt.Sprintf("The %s field must not be greater than %d characters.", field, maxNameLength))
	}
}

func invalidCategoryMessage(index int) (string, string) {
	field := fmt.Sprintf("categories.%d", index)
	return field, fmt.Sprintf("The selected %s is invalid.", field)
}
