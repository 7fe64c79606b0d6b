// Package server dispatches requests to file-defined handlers and
// streams their content trees back as HTML.
//
// A Dispatcher resolves the request path through the route manifest,
// loads the matched handler from the registry, invokes it with a
// per-request Ctx, and pipes the returned tree through the stream
// encoder. Unmatched requests fall back to the reserved not-found route.
package server
