package server

import (
	"github.com/strand-dev/strand/internal/errors"
	"github.com/strand-dev/strand/pkg/markup"
)

// HandlerFunc is the invocable entry point of a route. It receives the
// per-request context and returns the content tree to stream. Handlers
// producing no body (endpoints that only set headers) return a nil tree.
type HandlerFunc func(ctx *Ctx) (*markup.Node, error)

// Registry maps route pathnames to their handlers. It is populated once
// during application setup and read-only afterwards, so it may be read
// concurrently by unlimited requests.
type Registry struct {
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Handle registers a handler under a route pathname (router notation,
// e.g. "/blog/:slug").
func (r *Registry) Handle(pathname string, h HandlerFunc) {
	r.handlers[pathname] = h
}

// Load resolves a route pathname to its handler. A matched route with no
// registered handler is a configuration error for that route, not a
// recoverable per-request condition.
func (r *Registry) Load(pathname string) (HandlerFunc, error) {
	h, ok := r.handlers[pathname]
	if !ok {
		return nil, errors.New("E201").
			WithSuggestion("register a handler for " + pathname + " on the registry")
	}
	return h, nil
}

// Has reports whether a handler is registered for the pathname.
func (r *Registry) Has(pathname string) bool {
	_, ok := r.handlers[pathname]
	return ok
}
