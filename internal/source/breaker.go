package source

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dbsmedya/pagetable/internal/types"
)

// BreakerSettings tunes the circuit breaker. Zero values use the defaults.
type BreakerSettings struct {
	Interval time.Duration // closed-state window after which counts reset
	Timeout  time.Duration // how long the breaker stays open
}

// Breaker stops calling the wrapped source after repeated transport failures
// and fails fast until the open timeout elapses.
type Breaker struct {
	next Source
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next in a circuit breaker named name.
func NewBreaker(name string, next Source, settings BreakerSettings) *Breaker {
	if settings.Interval <= 0 {
		settings.Interval = 5 * time.Second
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 3 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// Only backend failures count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransportError(err)
		},
	})

	return &Breaker{next: next, cb: cb}
}

// FetchPage calls the wrapped source through the breaker. An open breaker
// is reported as a *TransportError.
func (b *Breaker) FetchPage(ctx context.Context, req types.PageRequest) (types.PageResponse, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.FetchPage(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return types.PageResponse{}, &TransportError{Op: "breaker " + b.cb.Name(), Err: err}
		}
		return types.PageResponse{}, err
	}
	return out.(types.PageResponse), nil
}

// State returns the breaker state name: "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}
