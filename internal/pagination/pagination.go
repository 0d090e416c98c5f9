package pagination

const DefaultPerPage = 15

// Page is one slice of a newest-first listing plus the meta the frontend
// paginator renders.
type Page[T any] struct {
	Items       []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// Normalize clamps page to at least 1 and perPage to DefaultPerPage when unset.
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return page, perPage
}

func Offset(page, perPage int) int {
	page, perPage = Normalize(page, perPage)
	return (page - 1) * perPage
}

func New[T any](items []T, page, perPage int, total int64) Page[T] {
	page, perPage = Normalize(page, perPage)
	if items == nil {
		items = []T{}
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return Page[T]{
		Items:       items,
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    last,
	}
}
