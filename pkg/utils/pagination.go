package utils

import "fmt"

// Pagination is the metadata block every list endpoint returns alongside its
// data array.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Limit int `json:"limit"`
}

// NewPagination computes the metadata for a result set of total rows viewed
// at the given page and limit. Pages is at least 1 so an empty set still
// renders as page 1 of 1.
func NewPagination(total, page, limit int) Pagination {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return Pagination{Total: total, Page: page, Pages: pages, Limit: limit}
}

// Offset returns the SQL/Mongo skip for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// RangeLabel renders the "X to Y of Z" text the console shows under tables.
func (p Pagination) RangeLabel() string {
	if p.Total == 0 {
		return "0 to 0 of 0"
	}
	from := (p.Page-1)*p.Limit + 1
	to := p.Page * p.Limit
	if to > p.Total {
		to = p.Total
	}
	return fmt.Sprintf("%d to %d of %d", from, to, p.Total)
}
