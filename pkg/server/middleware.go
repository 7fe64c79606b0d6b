package server

// Middleware processes requests before they reach the handler.
type Middleware interface {
	// Handle processes the request and optionally calls next.
	// Return an error to stop the chain and report an error.
	// Return nil without calling next to stop the chain without error.
	Handle(ctx *Ctx, next func() error) error
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ctx *Ctx, next func() error) error

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx *Ctx, next func() error) error {
	return f(ctx, next)
}

// RunMiddleware executes the chain around final. It reports whether
// final actually ran: a middleware may short-circuit the chain without
// error, in which case final never executes.
func RunMiddleware(ctx *Ctx, mws []Middleware, final func() error) (bool, error) {
	ran := false

	var run func(i int) error
	run = func(i int) error {
		if i >= len(mws) {
			ran = true
			return final()
		}
		return mws[i].Handle(ctx, func() error {
			return run(i + 1)
		})
	}

	err := run(0)
	return ran, err
}
