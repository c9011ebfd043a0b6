package models

import "time"

// Product is a catalog entry owned by the user who created it.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	OwnerID   string    `json:"-"`
	Owner     *User     `json:"owner,omitempty"` // Populated by reads that join the owner
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name     string
	Price    float64
	Quantity int
}

// ProductQuery selects one page of the product listing.
type ProductQuery struct {
	Search string // case-insensitive substring of the name; empty matches all
	Page   int    // 1-based
	Limit  int
}

// Skip is the number of matching products before the requested page.
func (q ProductQuery) Skip() int {
	return (q.Page - 1) * q.Limit
}

// ProductPage is one page of a product listing plus its paging metadata.
type ProductPage struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	Limit       int       `json:"limit"`
	Page        int       `json:"page"`
	TotalPages  int       `json:"totalPages"`
	HasNextPage bool      `json:"hasNextPage"`
	HasPrevPage bool      `json:"hasPrevPage"`
	NextPage    *int      `json:"nextPage"`
	PrevPage    *int      `json:"prevPage"`
}

// NewProductPage computes the paging metadata for products found on page q.Page
// out of total matches.
func NewProductPage(products []Product, total int, q ProductQuery) ProductPage {
	totalPages := 1
	if q.Limit > 0 && total > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}

	page := ProductPage{
		Products:    products,
		Total:       total,
		Limit:       q.Limit,
		Page:        q.Page,
		TotalPages:  totalPages,
		HasPrevPage: q.Page > 1,
		HasNextPage: q.Page < totalPages,
	}
	if page.Products == nil {
		page.Products = []Product{}
	}
	if page.HasPrevPage {
		prev := q.Page - 1
		page.PrevPage = &prev
	}
	if page.HasNextPage {
		next := q.Page + 1
		page.NextPage = &next
	}
	return page
}
