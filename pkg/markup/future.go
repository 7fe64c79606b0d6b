package markup

import "context"

// Future is a one-shot asynchronous subtree. The producing goroutine is
// started by NewFuture; Await blocks until the value settles or the
// context is done. A Future may be awaited any number of times.
type Future struct {
	done chan struct{}
	node *Node
	err  error
}

// NewFuture starts fn in its own goroutine and returns a handle to its
// eventual result. The context passed to fn should be the request context
// so in-flight work is released when the request ends.
func NewFuture(ctx context.Context, fn func(ctx context.Context) (*Node, error)) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.node, f.err = fn(ctx)
	}()
	return f
}

// Resolved returns a Future that is already settled with the given node.
func Resolved(node *Node) *Future {
	f := &Future{done: make(chan struct{}), node: node}
	close(f.done)
	return f
}

// Await blocks until the future settles or ctx is done, whichever comes
// first.
func (f *Future) Await(ctx context.Context) (*Node, error) {
	select {
	case <-f.done:
		return f.node, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
