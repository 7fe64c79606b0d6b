package routes

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Kind distinguishes markup-producing pages from plain endpoints.
type Kind uint8

const (
	KindPage Kind = iota
	KindEndpoint
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindPage:
		return "page"
	case KindEndpoint:
		return "endpoint"
	default:
		return "unknown"
	}
}

// ScoreCatchAll and DepthCatchAll model the unbounded score and depth of
// catch-all routes. Any route containing a catch-all segment scores and
// matches at any depth.
const (
	ScoreCatchAll = math.MaxInt
	DepthCatchAll = math.MaxInt
)

// NotFoundPathname is the reserved pathname the dispatcher re-resolves
// once when an ordinary request matches nothing.
const NotFoundPathname = "/404"

// Route is one compiled entry of the manifest. Routes are created during
// the manifest build and never mutated afterwards.
type Route struct {
	// Pathname is the logical path with bracket placeholders normalized
	// to router notation (e.g. "/blog/:slug"). It is also the handler
	// registry key.
	Pathname string

	// PatternSource is the expression the matchable pattern was
	// compiled from.
	PatternSource string

	// Pattern matches normalized request paths and extracts captures.
	Pattern *regexp.Regexp

	// Kind is page or endpoint.
	Kind Kind

	// Score is the specificity score; lower wins. Static segments cost
	// 0, a named capture at 1-based position i costs i, and a catch-all
	// saturates the score to ScoreCatchAll.
	Score int

	// Depth is the number of path segments minus one, or DepthCatchAll
	// for routes ending in a catch-all.
	Depth int

	// HandlerLocation is the opaque source reference the route was
	// compiled from (the route file's path within the pages tree).
	HandlerLocation string
}

// Match tests the route's pattern against a normalized pathname and
// returns the extracted named captures.
func (r *Route) Match(pathname string) (map[string]string, bool) {
	m := r.Pattern.FindStringSubmatch(pathname)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string)
	for i, name := range r.Pattern.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = m[i]
		}
	}
	return params, true
}

var (
	namedSegmentRe    = regexp.MustCompile(`^\[(\w+)\]$`)
	catchAllSegmentRe = regexp.MustCompile(`^\[\.\.\.(\w+)\]$`)
)

// compilePattern turns a bracket-notation logical path into a Route's
// pattern fields. The input has its file extension and any trailing
// "index" segment already stripped.
func compilePattern(logical string) (pathname, patternSource string, pattern *regexp.Regexp, score, depth int, err error) {
	segments := splitPath(logical)

	srcSegs := make([]string, 0, len(segments))
	reSegs := make([]string, 0, len(segments))
	catchAll := false
	score = 0

	for i, seg := range segments {
		switch {
		case catchAllSegmentRe.MatchString(seg):
			if i != len(segments)-1 {
				return "", "", nil, 0, 0, fmt.Errorf("catch-all segment %q must be trailing", seg)
			}
			name := catchAllSegmentRe.FindStringSubmatch(seg)[1]
			srcSegs = append(srcSegs, "*"+name)
			reSegs = append(reSegs, `(?P<`+name+`>.+)`)
			catchAll = true
			score = ScoreCatchAll

		case namedSegmentRe.MatchString(seg):
			name := namedSegmentRe.FindStringSubmatch(seg)[1]
			srcSegs = append(srcSegs, ":"+name)
			reSegs = append(reSegs, `(?P<`+name+`>[^/]+)`)
			if score != ScoreCatchAll {
				score += i + 1
			}

		case strings.ContainsAny(seg, "[]"):
			return "", "", nil, 0, 0, fmt.Errorf("malformed segment %q", seg)

		default:
			srcSegs = append(srcSegs, seg)
			reSegs = append(reSegs, regexp.QuoteMeta(seg))
		}
	}

	pathname = "/" + strings.Join(srcSegs, "/")
	expr := "^/" + strings.Join(reSegs, "/") + "$"
	if len(segments) == 0 {
		pathname = "/"
		expr = "^/$"
	}

	pattern, err = regexp.Compile(expr)
	if err != nil {
		// Duplicate capture names surface here.
		return "", "", nil, 0, 0, fmt.Errorf("compiling pattern for %q: %w", logical, err)
	}

	depth = len(segments) - 1
	if depth < 0 {
		depth = 0
	}
	if catchAll {
		depth = DepthCatchAll
	}

	return pathname, expr, pattern, score, depth, nil
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
