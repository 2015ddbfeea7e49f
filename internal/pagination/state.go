// Package pagination implements the server-driven pagination controller.
package pagination

import (
	"errors"

	"github.com/dbsmedya/pagetable/internal/types"
)

// Intent errors. None of them changes controller state.
var (
	ErrPageOutOfRange  = errors.New("page index out of range")
	ErrNoNextPage      = errors.New("already on the last page")
	ErrNoPreviousPage  = errors.New("already on the first page")
	ErrInvalidPageSize = errors.New("page size is not one of the allowed options")
	ErrNotStarted      = errors.New("controller not started")
	ErrAlreadyStarted  = errors.New("controller already started")
	ErrClosed          = errors.New("controller closed")
)

// Status describes whether the displayed page is current.
type Status int

const (
	// StatusIdle means the latest issued fetch has been applied.
	StatusIdle Status = iota
	// StatusFetching means a fetch is outstanding; the previous records stay displayed.
	StatusFetching
	// StatusFailed means the latest fetch failed; the previous records stay displayed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller. Records is a copy owned by the caller.
type State struct {
	Records     []types.Record
	PageIndex   int
	PageSize    int
	PageCount   int
	QueryToken  string
	CanNext     bool
	CanPrevious bool
	Status      Status
	Err         error
}

// Page returns the 1-based page number for display.
func (s State) Page() int {
	return s.PageIndex + 1
}

func (s *State) updateNavigation() {
	s.CanPrevious = s.PageIndex > 0
	s.CanNext = s.PageIndex+1 < s.PageCount
}

func (s State) clone() State {
	out := s
	if s.Records != nil {
		out.Records = make([]types.Record, len(s.Records))
		copy(out.Records, s.Records)
	}
	return out
}

// lastIndex is the highest page index the current page count allows.
func (s State) lastIndex() int {
	if s.PageCount < 1 {
		return 0
	}
	return s.PageCount - 1
}
