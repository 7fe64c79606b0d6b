// Package routes maps request paths to file-defined handlers.
//
// A manifest is compiled once at startup from a pages tree: every route
// file becomes an immutable Route with a matchable pattern, a specificity
// score, and a depth bound. Dynamic segments use bracket notation in file
// paths:
//
//	pages/index.go             -> /
//	pages/about.go             -> /about
//	pages/blog/[slug].go       -> /blog/:slug
//	pages/docs/[...path].go    -> /docs/*path
//
// Lower scores are more specific: an all-static route scores 0 and always
// beats a capture-bearing route matching the same path; catch-alls score
// last. Resolution filters by depth, tests patterns, and breaks score
// ties by lexical pathname order so matching is deterministic.
package routes
