package source

import (
	"context"
	"fmt"
	"time"

	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/types"
)

// Retrying retries transport failures of the wrapped source with
// exponential backoff. Other errors are returned immediately.
type Retrying struct {
	next        Source
	maxAttempts int
	backoff     time.Duration
	logger      *logger.Logger
}

// NewRetrying wraps next. maxAttempts below 1 is treated as 1.
func NewRetrying(next Source, maxAttempts int, backoff time.Duration, log *logger.Logger) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Retrying{
		next:        next,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      log.WithComponent("retry"),
	}
}

// FetchPage calls the wrapped source until it succeeds, fails with a
// non-transport error, or runs out of attempts.
func (r *Retrying) FetchPage(ctx context.Context, req types.PageRequest) (types.PageResponse, error) {
	var err error
	backoff := r.backoff

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		var resp types.PageResponse
		resp, err = r.next.FetchPage(ctx, req)
		if err == nil || !IsTransportError(err) {
			return resp, err
		}

		if attempt == r.maxAttempts {
			break
		}

		r.logger.Warnw("Fetch failed, retrying",
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return types.PageResponse{}, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}

	return types.PageResponse{}, fmt.Errorf("fetch failed after %d attempts: %w", r.maxAttempts, err)
}
