// Package source provides the remote data sources the table pages through.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/pagetable/internal/types"
)

// Source returns one page of the result set for a query token. A token that
// differs from the previous one starts a new result set.
//
// Implementations block until the page is available; callers that must stay
// responsive run FetchPage on their own goroutine.
type Source interface {
	FetchPage(ctx context.Context, req types.PageRequest) (types.PageResponse, error)
}

// Func adapts an ordinary function to Source.
type Func func(ctx context.Context, req types.PageRequest) (types.PageResponse, error)

// FetchPage calls f(ctx, req).
func (f Func) FetchPage(ctx context.Context, req types.PageRequest) (types.PageResponse, error) {
	return f(ctx, req)
}

// TransportError reports a failure to reach or read from the backend.
// Transport errors are retryable; request validation errors are not.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ErrInvalidRequest is wrapped by errors returned for malformed page requests.
var ErrInvalidRequest = errors.New("invalid page request")

func validate(req types.PageRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
