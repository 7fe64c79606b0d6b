package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/strand-dev/strand/pkg/markup"
	"github.com/strand-dev/strand/pkg/suspense"
)

// Ctx is the per-request context handed to route handlers. It carries
// the incoming request, the response-header carrier, and the captures
// extracted by route matching. A Ctx lives for exactly one request and
// is never shared across requests.
type Ctx struct {
	req    *http.Request
	header http.Header
	params map[string]string
	status int
	logger *slog.Logger

	// Boundary defaults inherited from the dispatcher's configuration.
	boundaryMin       time.Duration
	boundaryMax       time.Duration
	onBoundaryTimeout func()
}

// NewCtx creates a request context. header is the response-header
// carrier; params are the route captures (may be nil).
func NewCtx(r *http.Request, header http.Header, params map[string]string, logger *slog.Logger) *Ctx {
	if params == nil {
		params = make(map[string]string)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ctx{
		req:    r,
		header: header,
		params: params,
		logger: logger,
	}
}

// Request returns the underlying HTTP request.
func (c *Ctx) Request() *http.Request {
	return c.req
}

// Context returns the request's context. Handlers should thread it
// through every blocking operation so cancellation propagates.
func (c *Ctx) Context() context.Context {
	return c.req.Context()
}

// Path returns the URL path.
func (c *Ctx) Path() string {
	return c.req.URL.Path
}

// Method returns the HTTP method.
func (c *Ctx) Method() string {
	return c.req.Method
}

// Query returns the URL query parameters as url.Values.
func (c *Ctx) Query() url.Values {
	return c.req.URL.Query()
}

// QueryParam returns a single query parameter value by key. Returns an
// empty string if the key is not present.
func (c *Ctx) QueryParam(key string) string {
	return c.req.URL.Query().Get(key)
}

// Param returns a route capture by name. Returns an empty string if the
// capture is not present.
func (c *Ctx) Param(name string) string {
	return c.params[name]
}

// Params returns all route captures.
func (c *Ctx) Params() map[string]string {
	return c.params
}

// Header returns the response-header carrier. Handlers may set headers
// until the first byte of the body is streamed.
func (c *Ctx) Header() http.Header {
	return c.header
}

// SetStatus overrides the response status code. It must be called
// before streaming starts; afterwards it has no effect.
func (c *Ctx) SetStatus(code int) {
	c.status = code
}

// Status returns the status override, or zero if unset.
func (c *Ctx) Status() int {
	return c.status
}

// Logger returns the request-scoped logger.
func (c *Ctx) Logger() *slog.Logger {
	return c.logger
}

// Suspend wraps compute in a deferred boundary using the timing defaults
// the dispatcher was configured with. Per-call options override them.
// Handlers that want the hardcoded package defaults regardless of
// configuration can call suspense.New directly.
func (c *Ctx) Suspend(compute func(ctx context.Context) (*markup.Node, error), opts ...suspense.Option) *markup.Node {
	all := make([]suspense.Option, 0, len(opts)+3)
	if c.boundaryMin > 0 {
		all = append(all, suspense.WithMinDelay(c.boundaryMin))
	}
	if c.boundaryMax > 0 {
		all = append(all, suspense.WithMaxDelay(c.boundaryMax))
	}
	if c.onBoundaryTimeout != nil {
		all = append(all, suspense.WithTimeoutObserver(c.onBoundaryTimeout))
	}
	all = append(all, opts...)
	return suspense.New(c.Context(), compute, all...)
}
