package domain

import (
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SearchFilters narrows a movie listing. It is a value: the With methods
// return a modified copy. Changing anything other than the page resets
// the page to 1.
type SearchFilters struct {
	Genre   string `schema:"genre,omitempty"`
	MinYear int    `schema:"min_year,omitempty"`
	MaxYear int    `schema:"max_year,omitempty"`
	Search  string `schema:"search,omitempty"`
	Page    int    `schema:"page,omitempty"`
	Limit   int    `schema:"limit,omitempty"`
}

// DefaultFilters returns the unfiltered first page.
func DefaultFilters() SearchFilters {
	return SearchFilters{Page: DefaultPage, Limit: DefaultLimit}
}

func (f SearchFilters) WithGenre(genre string) SearchFilters {
	f.Genre = genre
	f.Page = DefaultPage
	return f
}

func (f SearchFilters) WithSearch(search string) SearchFilters {
	f.Search = strings.TrimSpace(search)
	f.Page = DefaultPage
	return f
}

func (f SearchFilters) WithMinYear(year int) SearchFilters {
	f.MinYear = year
	f.Page = DefaultPage
	return f
}

func (f SearchFilters) WithMaxYear(year int) SearchFilters {
	f.MaxYear = year
	f.Page = DefaultPage
	return f
}

func (f SearchFilters) WithLimit(limit int) SearchFilters {
	f.Limit = limit
	f.Page = DefaultPage
	return f
}

// WithPage moves to page n and leaves every other field alone.
func (f SearchFilters) WithPage(n int) SearchFilters {
	if n < 1 {
		n = 1
	}
	f.Page = n
	return f
}

// Active reports whether any narrowing filter is set.
func (f SearchFilters) Active() bool {
	return f.Genre != "" || f.Search != "" || f.MinYear != 0 || f.MaxYear != 0
}

var queryEncoder = schema.NewEncoder()

// Query encodes the filters as URL query parameters. Unset fields are
// omitted.
func (f SearchFilters) Query() url.Values {
	v := url.Values{}
	// Encode only fails on unsupported field types.
	_ = queryEncoder.Encode(f, v)
	return v
}
