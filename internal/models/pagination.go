package models

// FindOptions filters and paginates listing queries. Page and Limit are
// 1-based and only honored when Paginated is set.
type FindOptions struct {
	OwnerID   string
	Paginated bool
	Page      int
	Limit     int
}

// Normalize clamps page and limit to usable values.
func (o FindOptions) Normalize() FindOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 10
	}
	return o
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(total int64, page, limit int) *Pagination {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// OrderPage is the result of an order listing. Pagination is nil when
// the listing was not paginated and Items holds the full sequence.
type OrderPage struct {
	Items      []*Order    `json:"items"`
	Pagination *Pagination `json:"pagination,omitempty"`
}
