package models

import "math"

// Page is an offset/limit window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Skip     int   `json:"skip"`
	Limit    int   `json:"limit"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"hasNext"`
	HasPrev  bool  `json:"hasPrev"`
	NextSkip int   `json:"nextSkip"`
	PrevSkip int   `json:"prevSkip"`
}

// NewPagination computes navigation for page p of a listing with total
// matching documents.
func NewPagination(p Page, total int64) Pagination {
	prev := p.Skip - p.Limit
	if prev < 0 {
		prev = 0
	}
	next := p.Skip + p.Limit
	if next < p.Skip {
		next = math.MaxInt
	}
	return Pagination{
		Skip:     p.Skip,
		Limit:    p.Limit,
		Total:    total,
		HasNext:  int64(p.Skip) < total-int64(p.Limit),
		HasPrev:  p.Skip > 0,
		NextSkip: next,
		PrevSkip: prev,
	}
}

type Paginated[T any] struct {
	Items []T `json:"items"`
	Pagination
}

func NewPaginated[T any](items []T, p Page, total int64) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{Items: items, Pagination: NewPagination(p, total)}
}
