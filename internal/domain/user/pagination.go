package user

const (
	// DefaultPageSize is used when a query carries no usable page size.
	DefaultPageSize = 10
)

// Paginate returns the zero-based page pageIndex of items, pageSize entries long,
// clipped to the bounds of items. An out-of-range page yields an empty, non-nil slice.
func Paginate[T any](items []T, pageIndex, pageSize int) []T {
	if pageIndex < 0 || pageSize <= 0 || pageIndex > len(items)/pageSize {
		return []T{}
	}

	start := pageIndex * pageSize
	end := len(items)
	if pageSize < end-start {
		end = start + pageSize
	}

	page := make([]T, end-start)
	copy(page, items[start:end])
	return page
}
