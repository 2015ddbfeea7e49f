package source

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/pagetable/internal/generator"
	"github.com/dbsmedya/pagetable/internal/types"
)

func fixedStore(total int) *Store {
	return NewStore(generator.New(1), StoreOptions{
		MinResults:     total,
		MaxResults:     total,
		InitialResults: 99,
	})
}

func TestNewStore_Primed(t *testing.T) {
	store := fixedStore(10)

	assert.Equal(t, "", store.Token())
	assert.Equal(t, 99, store.Total())
	assert.Equal(t, 0, store.Generations())

	ds, regenerated := store.Resolve("")
	assert.False(t, regenerated)
	assert.Len(t, ds, 99)
}

func TestStore_ResolveRegeneratesOnTokenChange(t *testing.T) {
	store := NewStore(generator.New(7), StoreOptions{MinResults: 1, MaxResults: 100})

	first, regenerated := store.Resolve("a")
	require.True(t, regenerated)
	assert.GreaterOrEqual(t, first.Len(), 1)
	assert.LessOrEqual(t, first.Len(), 100)

	again, regenerated := store.Resolve("a")
	assert.False(t, regenerated)
	assert.Equal(t, first, again)

	_, regenerated = store.Resolve("b")
	assert.True(t, regenerated)
	assert.Equal(t, "b", store.Token())
	assert.Equal(t, 2, store.Generations())
}

func TestStore_ClampsOptions(t *testing.T) {
	store := NewStore(generator.New(3), StoreOptions{MinResults: 0, MaxResults: -5})

	ds, _ := store.Resolve("x")
	assert.Len(t, ds, 1)
}

func TestStore_SubRows(t *testing.T) {
	store := NewStore(generator.New(3), StoreOptions{MinResults: 4, MaxResults: 4, SubRowDepth: 2})

	ds, _ := store.Resolve("x")
	require.Len(t, ds, 4)
	for _, r := range ds {
		require.Len(t, r.SubRows, SubRowFanout)
		for _, sub := range r.SubRows {
			assert.Len(t, sub.SubRows, SubRowFanout)
		}
	}
}

func TestMemorySource_FetchPage(t *testing.T) {
	src := NewMemorySource(fixedStore(10), 0, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		offset  int
		size    int
		wantLen int
	}{
		{"first page", 0, 3, 3},
		{"middle page", 3, 3, 3},
		{"last partial page", 9, 3, 1},
		{"past the end", 12, 3, 0},
		{"whole set", 0, 50, 10},
		{"huge page size", 1, math.MaxInt, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := src.FetchPage(ctx, types.PageRequest{Offset: tt.offset, PageSize: tt.size, QueryToken: "q"})
			require.NoError(t, err)
			assert.Len(t, resp.Records, tt.wantLen)
			assert.NotNil(t, resp.Records)
			assert.Equal(t, 10, resp.TotalCount)
		})
	}
}

func TestMemorySource_OutOfRangeKeepsPageCount(t *testing.T) {
	src := NewMemorySource(fixedStore(10), 0, nil)

	resp, err := src.FetchPage(context.Background(), types.PageRequest{Offset: 12, PageSize: 3, QueryToken: "q"})
	require.NoError(t, err)
	assert.Empty(t, resp.Records)
	assert.Equal(t, 4, types.PageCount(resp.TotalCount, 3))
}

func TestMemorySource_PagesAreConsistentWithinToken(t *testing.T) {
	src := NewMemorySource(fixedStore(10), 0, nil)
	ctx := context.Background()

	whole, err := src.FetchPage(ctx, types.PageRequest{Offset: 0, PageSize: 10, QueryToken: "q"})
	require.NoError(t, err)

	page, err := src.FetchPage(ctx, types.PageRequest{Offset: 3, PageSize: 3, QueryToken: "q"})
	require.NoError(t, err)
	assert.Equal(t, whole.Records[3:6], page.Records)
}

func TestMemorySource_InvalidRequest(t *testing.T) {
	src := NewMemorySource(fixedStore(10), 0, nil)

	_, err := src.FetchPage(context.Background(), types.PageRequest{Offset: -1, PageSize: 3})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.False(t, IsTransportError(err))

	_, err = src.FetchPage(context.Background(), types.PageRequest{Offset: 0, PageSize: 0})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMemorySource_Delay(t *testing.T) {
	src := NewMemorySource(fixedStore(10), 30*time.Millisecond, nil)

	start := time.Now()
	_, err := src.FetchPage(context.Background(), types.PageRequest{Offset: 0, PageSize: 3, QueryToken: "q"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMemorySource_CancelDuringDelay(t *testing.T) {
	src := NewMemorySource(fixedStore(10), time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := src.FetchPage(ctx, types.PageRequest{Offset: 0, PageSize: 3, QueryToken: "q"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMemorySource_CancelledBeforeFetch(t *testing.T) {
	store := fixedStore(10)
	src := NewMemorySource(store, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchPage(ctx, types.PageRequest{Offset: 0, PageSize: 3, QueryToken: "new"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "", store.Token(), "cancelled fetch must not switch the dataset")
}

func TestFunc(t *testing.T) {
	var got types.PageRequest
	src := Func(func(_ context.Context, req types.PageRequest) (types.PageResponse, error) {
		got = req
		return types.PageResponse{TotalCount: 5}, nil
	})

	resp, err := src.FetchPage(context.Background(), types.PageRequest{Offset: 2, PageSize: 1, QueryToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, "t", got.QueryToken)
}

func TestTransportError(t *testing.T) {
	base := errors.New("connection refused")
	err := &TransportError{Op: "fetch", Err: base}

	assert.Equal(t, "transport error during fetch: connection refused", err.Error())
	assert.ErrorIs(t, err, base)
	assert.True(t, IsTransportError(err))
	assert.True(t, IsTransportError(errors.Join(errors.New("outer"), err)))
	assert.False(t, IsTransportError(base))
	assert.False(t, IsTransportError(nil))
}
