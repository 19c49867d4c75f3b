package models

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items       []T
	Total       int64
	CurrentPage int
	PerPage     int
}

// LastPage is the index of the last page, at least 1.
func (p Page[T]) LastPage() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize clamps the page to >= 1 and the size to [1, MaxPageSize],
// falling back to DefaultPageSize when unset.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize <= 0:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}
