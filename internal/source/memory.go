package source

import (
	"context"
	"sync"
	"time"

	"github.com/dbsmedya/pagetable/internal/generator"
	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/types"
)

// SubRowFanout is the number of sub-rows each record gets per nesting level.
const SubRowFanout = 3

// StoreOptions controls how a Store sizes and shapes its datasets.
type StoreOptions struct {
	MinResults     int // inclusive lower bound of a regenerated result set
	MaxResults     int // inclusive upper bound of a regenerated result set
	InitialResults int // size of the dataset served to the empty token
	SubRowDepth    int // nesting levels of cosmetic sub-rows
}

// Store holds the current query token and the dataset generated for it.
// The dataset is replaced wholesale whenever a different token arrives.
//
// A new Store is primed with InitialResults records under the empty token.
// Only a request carrying the empty token is ever answered from that primed
// dataset; the first non-empty token always generates a fresh one.
type Store struct {
	mu          sync.Mutex
	gen         *generator.Generator
	opts        StoreOptions
	token       string
	dataset     types.Dataset
	generations int
}

// NewStore creates a Store primed with opts.InitialResults records.
func NewStore(gen *generator.Generator, opts StoreOptions) *Store {
	if opts.MinResults < 1 {
		opts.MinResults = 1
	}
	if opts.MaxResults < opts.MinResults {
		opts.MaxResults = opts.MinResults
	}

	s := &Store{gen: gen, opts: opts}
	s.dataset = s.generate(opts.InitialResults)
	return s
}

// Resolve returns the dataset for token, regenerating it with a new random
// size when token differs from the stored one. The returned dataset must not
// be modified.
func (s *Store) Resolve(token string) (types.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == s.token {
		return s.dataset, false
	}

	span := s.opts.MaxResults - s.opts.MinResults + 1
	total := s.opts.MinResults + s.gen.Intn(span)

	s.dataset = s.generate(total)
	s.token = token
	s.generations++
	return s.dataset, true
}

// Token returns the last-seen query token.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Total returns the size of the current dataset.
func (s *Store) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset.Len()
}

// Generations returns how many times the dataset was regenerated for a new token.
func (s *Store) Generations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations
}

func (s *Store) generate(total int) types.Dataset {
	lens := []int{total}
	for i := 0; i < s.opts.SubRowDepth; i++ {
		lens = append(lens, SubRowFanout)
	}
	return s.gen.GenerateTree(lens...)
}

// MemorySource serves pages from a Store after a simulated round-trip delay.
type MemorySource struct {
	store  *Store
	delay  time.Duration
	logger *logger.Logger
}

// NewMemorySource creates a MemorySource over store. A nil logger discards output.
func NewMemorySource(store *Store, delay time.Duration, log *logger.Logger) *MemorySource {
	if log == nil {
		log = logger.NewNop()
	}
	return &MemorySource{
		store:  store,
		delay:  delay,
		logger: log.WithComponent("memory-source"),
	}
}

// FetchPage slices the dataset for req.QueryToken and answers after the
// configured delay. An offset past the end yields an empty page. The total
// count is the dataset size at the moment the request was resolved.
func (m *MemorySource) FetchPage(ctx context.Context, req types.PageRequest) (types.PageResponse, error) {
	if err := validate(req); err != nil {
		return types.PageResponse{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.PageResponse{}, err
	}

	dataset, regenerated := m.store.Resolve(req.QueryToken)
	if regenerated {
		m.logger.WithQuery(req.QueryToken).Debugw("Query changed, dataset regenerated",
			"total", dataset.Len())
	}

	resp := types.PageResponse{
		Records:    dataset.Slice(req.Offset, req.PageSize),
		TotalCount: dataset.Len(),
	}

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return types.PageResponse{}, ctx.Err()
		case <-timer.C:
		}
	}

	return resp, nil
}
