package domain

import "testing"

func TestPageValid(t *testing.T) {
	tests := []struct {
		name    string
		page    Page[int]
		wantErr bool
	}{
		{"first of three", Page[int]{Items: []int{1, 2}, Page: 1, Limit: 2, TotalPages: 3, HasNext: true}, false},
		{"last page", Page[int]{Items: []int{1}, Page: 3, Limit: 2, TotalPages: 3, HasPrevious: true}, false},
		{"empty", Page[int]{Page: 1, Limit: 10}, false},
		{"too many items", Page[int]{Items: []int{1, 2, 3}, Page: 1, Limit: 2, TotalPages: 1}, true},
		{"has_next on last page", Page[int]{Page: 2, Limit: 2, TotalPages: 2, HasNext: true}, true},
		{"missing has_next", Page[int]{Page: 1, Limit: 2, TotalPages: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.page.Valid()
			if (err != nil) != tt.wantErr {
				t.Errorf("Valid() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPageSummaryIsVerbatim(t *testing.T) {
	// Totals disagree with the items on purpose: the server is trusted.
	p := Page[int]{Items: []int{1}, Page: 2, Limit: 10, Total: 42, TotalPages: 5}
	if got := p.Summary(); got != "Page 2 of 5 (42 total)" {
		t.Errorf("Summary() = %q", got)
	}
	if !p.Paginated() {
		t.Error("Paginated() = false, want true")
	}
	if (Page[int]{TotalPages: 1}).Paginated() {
		t.Error("single page should not be paginated")
	}
}
