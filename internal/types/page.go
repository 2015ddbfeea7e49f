package types

import "fmt"

// PageRequest asks a source for one page of the result set for a query token.
type PageRequest struct {
	Offset     int
	PageSize   int
	QueryToken string
}

// Validate checks the offset and page size bounds.
func (r PageRequest) Validate() error {
	if r.Offset < 0 {
		return fmt.Errorf("offset cannot be negative: %d", r.Offset)
	}
	if r.PageSize <= 0 {
		return fmt.Errorf("page size must be positive: %d", r.PageSize)
	}
	return nil
}

// PageResponse is one page of records plus the size of the full result set
// that produced it.
type PageResponse struct {
	Records    []Record
	TotalCount int
}

// PageCount returns ceil(total / pageSize). A non-positive page size or an
// empty result set yields zero pages.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return 1 + (total-1)/pageSize
}
