package models

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit well inside int range.
	MaxPage      = 1_000_000
)

type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalImages     int64 `json:"totalImages"`
	ImagesPerPage   int   `json:"imagesPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

type ImagePage struct {
	Images     []Image
	Pagination Pagination
}

// NormalizePage falls back to the defaults for values below 1 and caps page
// and limit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (p Pagination) Offset() int {
	return (p.CurrentPage - 1) * p.ImagesPerPage
}

func NewPagination(page, limit int, total int64) Pagination {
	page, limit = NormalizePage(page, limit)
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalImages:     total,
		ImagesPerPage:   limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
