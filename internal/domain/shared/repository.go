package shared

import "time"

// DefaultPageSize matches the page size the web client asks for when it sends none
const DefaultPageSize = 5

// MaxPageSize caps list queries
const MaxPageSize = 500

// Filter represents query filter options shared by list endpoints
type Filter struct {
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
	Search    string
	StartTime *time.Time
	EndTime   *time.Time
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// Normalize clamps paging values into range
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.OrderDir != "asc" {
		f.OrderDir = "desc"
	}
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Size    int   `json:"size"`
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](records []T, total int64, page, pageSize int) Paginated[T] {
	if records == nil {
		records = make([]T, 0)
	}
	pages := 0
	if pageSize > 0 {
		pages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			pages++
		}
	}
	return Paginated[T]{
		Records: records,
		Total:   total,
		Size:    pageSize,
		Current: page,
		Pages:   pages,
	}
}
