package suspense

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/strand-dev/strand/pkg/markup"
)

// Default timing bounds for a boundary. The minimum delay avoids flashing
// a placeholder for content that settles almost immediately; the maximum
// delay guarantees the response is never held open indefinitely.
const (
	DefaultMinDelay = 20 * time.Millisecond
	DefaultMaxDelay = 5 * time.Second
)

// ErrTimeout is the failure a boundary reports when its computation has
// not settled within the maximum delay. It flows through the boundary's
// error renderer, exactly like a failure of the computation itself.
var ErrTimeout = errors.New("suspense: boundary timed out")

// ErrorRenderer produces the error branch of a boundary.
type ErrorRenderer func(err error) *markup.Node

// outcome is one settled result of the bound computation. Success and
// failure are two explicit outcomes of the same race.
type outcome struct {
	node *markup.Node
	err  error
}

type config struct {
	min       time.Duration
	max       time.Duration
	renderErr ErrorRenderer
	onTimeout func()
}

// Option configures a boundary.
type Option func(*config)

// WithMinDelay sets how long the boundary waits for the computation
// before falling back to a placeholder.
func WithMinDelay(d time.Duration) Option {
	return func(c *config) {
		c.min = d
	}
}

// WithMaxDelay sets how long a deferred boundary waits for the
// computation before failing with ErrTimeout.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.max = d
	}
}

// WithTimeoutObserver registers fn to run when the boundary fails with
// ErrTimeout. Used to feed metrics; the error renderer still runs.
func WithTimeoutObserver(fn func()) Option {
	return func(c *config) {
		c.onTimeout = fn
	}
}

// WithErrorRenderer sets the error branch content.
func WithErrorRenderer(fn ErrorRenderer) Option {
	return func(c *config) {
		c.renderErr = fn
	}
}

// New creates a boundary around compute. The computation starts
// immediately, in its own goroutine. If it settles before the minimum
// delay elapses, New returns its content (or the error branch) directly
// and nothing is deferred. Otherwise New returns a deferred node; when
// the stream encoder invokes its thunk, the computation races a second
// timer of the maximum delay, and the loser of that race is discarded.
func New(ctx context.Context, compute func(ctx context.Context) (*markup.Node, error), opts ...Option) *markup.Node {
	cfg := config{
		min:       DefaultMinDelay,
		max:       DefaultMaxDelay,
		renderErr: defaultErrorRenderer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Buffered so the computation goroutine never leaks: it can always
	// deposit its outcome, even after both races have been lost.
	results := make(chan outcome, 1)
	go func() {
		node, err := compute(ctx)
		results <- outcome{node: node, err: err}
	}()

	minTimer := time.NewTimer(cfg.min)
	defer minTimer.Stop()

	select {
	case out := <-results:
		// Fast path: settled before the minimum delay.
		return cfg.settle(out)
	case <-ctx.Done():
		return cfg.renderErr(ctx.Err())
	case <-minTimer.C:
	}

	// Deferred path: hand the encoder a thunk that runs the second race.
	id := uuid.NewString()
	thunk := func(ctx context.Context) (*markup.Node, error) {
		maxTimer := time.NewTimer(cfg.max)
		defer maxTimer.Stop()

		select {
		case out := <-results:
			return cfg.settle(out), nil
		case <-ctx.Done():
			return cfg.renderErr(ctx.Err()), nil
		case <-maxTimer.C:
			if cfg.onTimeout != nil {
				cfg.onTimeout()
			}
			return cfg.renderErr(ErrTimeout), nil
		}
	}
	return markup.Deferred(id, thunk)
}

// settle maps a settled outcome onto the success or error branch.
func (c *config) settle(out outcome) *markup.Node {
	if out.err != nil {
		return c.renderErr(out.err)
	}
	return out.node
}

// defaultErrorRenderer hides the failure behind an empty marker element.
// Applications almost always want WithErrorRenderer instead.
func defaultErrorRenderer(err error) *markup.Node {
	return markup.El("span", markup.Attrs{"data-strand-error": true})
}
