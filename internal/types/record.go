// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import "fmt"

// Status is the relationship status shown in the Status column.
type Status string

const (
	StatusRelationship Status = "relationship"
	StatusComplicated  Status = "complicated"
	StatusSingle       Status = "single"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusRelationship, StatusComplicated, StatusSingle}

// ParseStatus converts a stored status value back into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusRelationship, StatusComplicated, StatusSingle:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Record is a single table row. Records are never modified after generation.
type Record struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Age       int      `json:"age"`
	Visits    int      `json:"visits"`
	Status    Status   `json:"status"`
	Progress  int      `json:"progress"`
	SubRows   []Record `json:"subRows,omitempty"`
}

// Dataset is the full ordered result set for one query token.
type Dataset []Record

// Len returns the number of top-level records.
func (d Dataset) Len() int {
	return len(d)
}

// Slice returns the records in [offset, offset+size) clamped to the dataset
// bounds. An offset at or past the end yields an empty, non-nil slice.
func (d Dataset) Slice(offset, size int) []Record {
	if offset < 0 {
		offset = 0
	}
	if size < 0 {
		size = 0
	}
	if offset >= len(d) {
		return []Record{}
	}
	end := len(d)
	if size < len(d)-offset {
		end = offset + size
	}
	out := make([]Record, end-offset)
	copy(out, d[offset:end])
	return out
}
