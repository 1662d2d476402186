package calendar

// Page is one page of items.
type Page[T any] struct {
	Items    []T // items on this page
	Page     int // 1-based page number
	PageSize int
	HasNext  bool
	HasPrev  bool
	Total    int
}

// Paginate returns the page of items for the given 1-based page number.
// Non-positive page or pageSize fall back to defaults.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	const defaultPageSize = 10

	total := len(items)

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}
