package shared

// MaxPageSize caps list queries regardless of what the caller asks for
const MaxPageSize = 100

// Filter holds the paging, ordering and free-text search shared by the
// voucher and settlement lists. Repositories embed it in their own filters.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter is page 1 of 20, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// Paged reports whether the filter asks for a single page rather than every row
func (f Filter) Paged() bool {
	return f.Page > 0 && f.PageSize > 0
}

// Limit returns the page size clamped to MaxPageSize
func (f Filter) Limit() int {
	if f.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return f.PageSize
}

// Offset returns the row offset for the filter's page.
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}

// Paginated is one page of a list response
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
