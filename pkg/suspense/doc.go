// Package suspense implements deferred rendering boundaries.
//
// A boundary races a slow computation against two timers. If the
// computation settles before the minimum delay, its content renders
// inline and no placeholder ever appears. Otherwise the boundary yields
// a deferred node: the renderer emits a placeholder in document order and
// the real content follows later in the stream, whenever the computation
// settles. If the maximum delay expires first, the error branch is
// rendered instead.
package suspense
