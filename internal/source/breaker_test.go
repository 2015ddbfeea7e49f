package source

import (
	"context"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsOnTransportErrors(t *testing.T) {
	next := &flaky{errs: []error{transportErr(), transportErr(), transportErr()}}
	b := NewBreaker("test", next, BreakerSettings{Interval: time.Minute, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := b.FetchPage(context.Background(), testReq)
		require.Error(t, err)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.FetchPage(context.Background(), testReq)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls, "open breaker must not call the source")
}

func TestBreaker_IgnoresRequestErrors(t *testing.T) {
	next := &flaky{errs: []error{ErrInvalidRequest, ErrInvalidRequest, ErrInvalidRequest, ErrInvalidRequest}}
	b := NewBreaker("test", next, BreakerSettings{})

	for i := 0; i < 4; i++ {
		_, err := b.FetchPage(context.Background(), testReq)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	next := &flaky{errs: []error{transportErr(), transportErr(), transportErr()}}
	b := NewBreaker("test", next, BreakerSettings{Interval: time.Minute, Timeout: 20 * time.Millisecond})

	for i := 0; i < 3; i++ {
		_, _ = b.FetchPage(context.Background(), testReq)
	}
	require.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)

	resp, err := b.FetchPage(context.Background(), testReq)
	require.NoError(t, err)
	assert.Equal(t, 42, resp.TotalCount)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_PassesThroughSuccess(t *testing.T) {
	b := NewBreaker("test", &flaky{}, BreakerSettings{})

	resp, err := b.FetchPage(context.Background(), testReq)
	require.NoError(t, err)
	assert.Equal(t, 42, resp.TotalCount)
}
