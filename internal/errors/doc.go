// Package errors provides structured, actionable error messages for
// strand.
//
// Each registered error carries a unique code (e.g. "E101") mapping to a
// short message, a detailed explanation, and a category. Structural
// failures (an unroutable pages tree, a route with no registered
// handler) are reported through these codes so operators can tell
// configuration errors from request-time errors at a glance.
//
//	err := errors.New("E101").
//	    Wrap(cause).
//	    WithSuggestion("check the bracket placeholders in the file name")
package errors
