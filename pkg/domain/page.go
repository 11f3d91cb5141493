package domain

import "fmt"

// Page is one page of a paginated listing. All fields come from the
// server and are never recomputed locally.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Valid checks the invariants a well-formed page satisfies.
func (p Page[T]) Valid() error {
	if p.Limit > 0 && len(p.Items) > p.Limit {
		return fmt.Errorf("page holds %d items, limit is %d", len(p.Items), p.Limit)
	}
	if p.HasNext != (p.Page < p.TotalPages) {
		return fmt.Errorf("has_next=%t inconsistent with page %d of %d", p.HasNext, p.Page, p.TotalPages)
	}
	return nil
}

// Paginated reports whether there is more than one page.
func (p Page[T]) Paginated() bool {
	return p.TotalPages > 1
}

// Summary renders "Page 2 of 5 (42 total)".
func (p Page[T]) Summary() string {
	return fmt.Sprintf("Page %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
}
