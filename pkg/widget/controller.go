// Package widget implements the search widget controller: it validates
// submitted queries, keeps at most one request in flight and renders the
// results of the latest one into a View.
package widget

import (
	"context"
	"html/template"
	"log/slog"
	"sync"
	"time"

	"github.com/bornholm/ownsearch/pkg/render"
	"github.com/bornholm/ownsearch/pkg/search"
	"github.com/pkg/errors"
)

// PendingRequest is the handle of the single outstanding search request.
type PendingRequest struct {
	id        uint64
	query     string
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

func (r *PendingRequest) ID() uint64 {
	return r.id
}

func (r *PendingRequest) Query() string {
	return r.query
}

func (r *PendingRequest) StartedAt() time.Time {
	return r.startedAt
}

// Done is closed once the request goroutine returned, whether its response
// was rendered or dropped.
func (r *PendingRequest) Done() <-chan struct{} {
	return r.done
}

type Controller struct {
	client     search.Client
	view       View
	transition Transition

	mutex    sync.Mutex
	pending  *PendingRequest
	sequence uint64
	// content is the last fragment displayed by the controller, restored when
	// a request is canceled.
	content template.HTML

	wg sync.WaitGroup
}

type OptionFunc func(c *Controller)

func WithTransition(transition Transition) OptionFunc {
	return func(c *Controller) {
		c.transition = transition
	}
}

// Submit handles a query submission. An empty query is rejected with
// ErrEmptyQuery after alerting the user once. Otherwise the current pending
// request, if any, is canceled, the loading indicator is displayed and a new
// request is started. The request lives as long as ctx.
func (c *Controller) Submit(ctx context.Context, query string) error {
	if len(query) == 0 {
		c.view.Alert(ctx, ErrEmptyQuery.Message)
		return errors.WithStack(ErrEmptyQuery)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.pending != nil {
		slog.DebugContext(ctx, "superseding pending search", slog.Uint64("request", c.pending.id), slog.String("query", c.pending.query))
		c.pending.cancel()
		c.pending = nil
	}

	if err := c.view.ShowLoading(ctx); err != nil {
		return errors.Wrap(err, "could not display loading indicator")
	}

	c.sequence++

	requestCtx, cancel := context.WithCancel(ctx)

	req := &PendingRequest{
		id:        c.sequence,
		query:     query,
		startedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	c.pending = req

	c.wg.Add(1)
	go c.run(requestCtx, req)

	return nil
}

// Pending returns the outstanding request or nil when the controller is idle.
func (c *Controller) Pending() *PendingRequest {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.pending
}

// Cancel drops the outstanding request, if any, and replaces the loading
// indicator with the last content the controller displayed.
func (c *Controller) Cancel() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.pending == nil {
		return
	}

	ctx := context.Background()

	slog.DebugContext(ctx, "canceling pending search", slog.Uint64("request", c.pending.id))

	c.pending.cancel()
	c.pending = nil

	c.restore(ctx)
}

// restore displays the last content again. Callers must hold the mutex.
func (c *Controller) restore(ctx context.Context) {
	if err := c.view.Show(ctx, c.content, c.transition); err != nil {
		slog.ErrorContext(ctx, "could not restore previous content", slog.Any("error", errors.WithStack(err)))
	}
}

// Wait blocks until every started request goroutine returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) run(ctx context.Context, req *PendingRequest) {
	defer c.wg.Done()
	defer close(req.done)
	defer req.cancel()

	results, searchErr := c.client.Search(ctx, req.query)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.pending != req {
		slog.DebugContext(ctx, "ignoring superseded search response", slog.Uint64("request", req.id))
		return
	}

	c.pending = nil

	if ctx.Err() != nil {
		slog.DebugContext(ctx, "ignoring canceled search response", slog.Uint64("request", req.id))
		c.restore(context.WithoutCancel(ctx))
		return
	}

	var (
		fragment template.HTML
		err      error
	)

	if searchErr != nil {
		slog.ErrorContext(ctx, "search failed", slog.Uint64("request", req.id), slog.String("query", req.query), slog.Any("error", errors.WithStack(searchErr)))
		fragment, err = render.Failure()
	} else {
		slog.DebugContext(ctx, "search completed", slog.Uint64("request", req.id), slog.Int("results", len(results)), slog.Duration("elapsed", time.Since(req.startedAt)))
		fragment, err = render.Results(results)
	}

	if err != nil {
		slog.ErrorContext(ctx, "could not render search response", slog.Any("error", errors.WithStack(err)))
		return
	}

	if err := c.view.Show(ctx, fragment, c.transition); err != nil {
		slog.ErrorContext(ctx, "could not display search response", slog.Any("error", errors.WithStack(err)))
		return
	}

	c.content = fragment
}

func NewController(client search.Client, view View, funcs ...OptionFunc) *Controller {
	c := &Controller{
		client:     client,
		view:       view,
		transition: DefaultTransition,
	}

	for _, fn := range funcs {
		fn(c)
	}

	return c
}
