package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/source"
	"github.com/dbsmedya/pagetable/internal/types"
)

// Observer is told how each fetch ended. *metrics.Collector implements it.
type Observer interface {
	FetchApplied(d time.Duration)
	FetchSuperseded(d time.Duration)
	FetchFailed(d time.Duration)
}

type nopObserver struct{}

func (nopObserver) FetchApplied(time.Duration)    {}
func (nopObserver) FetchSuperseded(time.Duration) {}
func (nopObserver) FetchFailed(time.Duration)     {}

// Options configures a Controller.
type Options struct {
	DefaultPageSize int
	// PageSizeOptions restricts SetPageSize. Empty allows any positive size.
	PageSizeOptions []int
	// NewToken generates query tokens. Defaults to random UUIDs.
	NewToken func() string
	Observer Observer
	Logger   *logger.Logger
}

// Controller owns the page index, page size, page count and query token of
// one table, and keeps the displayed records in step with them.
//
// Every change to (page index, page size, token) issues a fetch on its own
// goroutine, tagged with an increasing sequence number. A fetch result is
// applied only if it is the latest one issued and its token and page size
// still match; anything else is dropped. Superseded fetches are not
// cancelled.
type Controller struct {
	src      source.Source
	opts     Options
	observer Observer
	logger   *logger.Logger

	mu      sync.Mutex
	state   State
	seq     uint64
	pending chan struct{} // closed when the latest issued fetch settles
	started bool
	closed  bool
	ctx     context.Context
	cancel  context.CancelFunc
	updates chan struct{}
	wg      sync.WaitGroup
}

// NewController creates a controller over src. Nothing is fetched until Start.
func NewController(src source.Source, opts Options) (*Controller, error) {
	if src == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if opts.DefaultPageSize <= 0 {
		return nil, fmt.Errorf("%w: default page size %d", ErrInvalidPageSize, opts.DefaultPageSize)
	}
	if len(opts.PageSizeOptions) > 0 && !containsInt(opts.PageSizeOptions, opts.DefaultPageSize) {
		return nil, fmt.Errorf("%w: default page size %d not in %v",
			ErrInvalidPageSize, opts.DefaultPageSize, opts.PageSizeOptions)
	}
	if opts.NewToken == nil {
		opts.NewToken = uuid.NewString
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Controller{
		src:      src,
		opts:     opts,
		observer: observer,
		logger:   log.WithComponent("pagination"),
		state:    State{PageSize: opts.DefaultPageSize},
		updates:  make(chan struct{}, 1),
	}, nil
}

// Start generates a fresh query token, resets to the first page at the
// default page size and issues the initial fetch. Fetches run under ctx;
// cancelling it has the same effect on in-flight fetches as Close.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.state.QueryToken = c.opts.NewToken()
	c.state.PageIndex = 0
	c.state.PageSize = c.opts.DefaultPageSize
	c.issueLocked()
	return nil
}

// NewQuery replaces the query token, which makes the source produce a new
// result set, and returns to the first page.
func (c *Controller) NewQuery() error {
	return c.intent(func() error {
		c.state.QueryToken = c.opts.NewToken()
		c.state.PageIndex = 0
		return nil
	})
}

// GoToPage moves to page index i. i must lie in [0, max(PageCount-1, 0)].
func (c *Controller) GoToPage(i int) error {
	return c.intent(func() error {
		if i < 0 || i > c.state.lastIndex() {
			return fmt.Errorf("%w: %d not in [0, %d]", ErrPageOutOfRange, i, c.state.lastIndex())
		}
		c.state.PageIndex = i
		return nil
	})
}

// NextPage moves forward one page.
func (c *Controller) NextPage() error {
	return c.intent(func() error {
		if !c.state.CanNext {
			return ErrNoNextPage
		}
		c.state.PageIndex++
		return nil
	})
}

// PreviousPage moves back one page.
func (c *Controller) PreviousPage() error {
	return c.intent(func() error {
		if !c.state.CanPrevious {
			return ErrNoPreviousPage
		}
		c.state.PageIndex--
		return nil
	})
}

// FirstPage moves to page index 0.
func (c *Controller) FirstPage() error {
	return c.GoToPage(0)
}

// LastPage moves to the last known page.
func (c *Controller) LastPage() error {
	return c.intent(func() error {
		c.state.PageIndex = c.state.lastIndex()
		return nil
	})
}

// SetPageSize changes the page size and returns to the first page, even
// when n equals the current size.
func (c *Controller) SetPageSize(n int) error {
	return c.intent(func() error {
		if n <= 0 || (len(c.opts.PageSizeOptions) > 0 && !containsInt(c.opts.PageSizeOptions, n)) {
			return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
		}
		c.state.PageSize = n
		c.state.PageIndex = 0
		return nil
	})
}

// Refresh re-issues the fetch for the current page, typically after a failure.
func (c *Controller) Refresh() error {
	return c.intent(func() error { return nil })
}

// intent applies change under the lock and issues a fetch if it succeeded.
func (c *Controller) intent(change func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if !c.started {
		return ErrNotStarted
	}
	if err := change(); err != nil {
		return err
	}
	c.issueLocked()
	return nil
}

// issueLocked starts a fetch for the current (index, size, token). c.mu must be held.
func (c *Controller) issueLocked() {
	c.seq++
	seq := c.seq
	req := types.PageRequest{
		Offset:     c.state.PageIndex * c.state.PageSize,
		PageSize:   c.state.PageSize,
		QueryToken: c.state.QueryToken,
	}

	c.state.Status = StatusFetching
	c.state.Err = nil
	c.state.updateNavigation()
	if c.pending == nil {
		c.pending = make(chan struct{})
	}

	c.logger.WithPage(c.state.PageIndex, c.state.PageSize).Debugw("Fetch issued",
		"seq", seq, "offset", req.Offset)

	ctx := c.ctx
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		start := time.Now()
		resp, err := c.src.FetchPage(ctx, req)
		c.settle(seq, req, resp, err, time.Since(start))
	}()
}

func (c *Controller) settle(seq uint64, req types.PageRequest, resp types.PageResponse, err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if seq != c.seq || req.QueryToken != c.state.QueryToken || req.PageSize != c.state.PageSize {
		c.observer.FetchSuperseded(elapsed)
		c.logger.Debugw("Dropped superseded fetch", "seq", seq, "latest", c.seq, "offset", req.Offset)
		return
	}

	if err != nil {
		if !source.IsTransportError(err) {
			err = &source.TransportError{Op: "fetch page", Err: err}
		}
		c.state.Status = StatusFailed
		c.state.Err = err
		c.observer.FetchFailed(elapsed)
		c.logger.WithQuery(req.QueryToken).Warnw("Fetch failed, keeping previous page",
			"page", c.state.PageIndex, "error", err)
		c.finishLocked()
		return
	}

	c.state.Records = resp.Records
	c.state.PageCount = types.PageCount(resp.TotalCount, req.PageSize)
	c.observer.FetchApplied(elapsed)

	// The result set shrank under the current page; move to its last page.
	if c.state.PageIndex > c.state.lastIndex() {
		c.logger.Infow("Page index past the end, moving to last page",
			"page", c.state.PageIndex, "page_count", c.state.PageCount)
		c.state.PageIndex = c.state.lastIndex()
		c.issueLocked()
		return
	}

	c.state.Status = StatusIdle
	c.state.Err = nil
	c.state.updateNavigation()
	c.finishLocked()
}

func (c *Controller) finishLocked() {
	if c.pending != nil {
		close(c.pending)
		c.pending = nil
	}
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Wait blocks until the latest issued fetch has been applied or has failed,
// then returns the state. It returns early with ctx's error.
func (c *Controller) Wait(ctx context.Context) (State, error) {
	for {
		c.mu.Lock()
		pending := c.pending
		if pending == nil {
			st := c.state.clone()
			c.mu.Unlock()
			return st, nil
		}
		c.mu.Unlock()

		select {
		case <-pending:
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
}

// Updates returns a channel that receives after each settled fetch. Only the
// latest notification is buffered. The channel is closed by Close.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// Close cancels in-flight fetches and waits for their goroutines. Later
// intents return ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	if c.pending != nil {
		close(c.pending)
		c.pending = nil
	}
	close(c.updates)
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
