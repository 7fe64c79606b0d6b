package routes

import (
	"context"
	"sort"
	"strings"
)

// Match is the result of resolving a request path: the single best route
// plus its extracted captures.
type Match struct {
	Route  *Route
	Params map[string]string
}

// Normalize canonicalizes a request pathname for matching: it guarantees
// a leading slash, strips a trailing slash, and collapses a trailing
// "index" segment into its parent so "/foo/index" and "/foo" resolve the
// same route.
func Normalize(pathname string) string {
	if pathname == "" {
		return "/"
	}
	if !strings.HasPrefix(pathname, "/") {
		pathname = "/" + pathname
	}
	if len(pathname) > 1 {
		pathname = strings.TrimSuffix(pathname, "/")
	}
	if pathname == "/index" {
		return "/"
	}
	pathname = strings.TrimSuffix(pathname, "/index")
	if pathname == "" {
		return "/"
	}
	return pathname
}

// PathDepth returns the segment depth of a normalized pathname, counted
// the same way route depths are.
func PathDepth(pathname string) int {
	segments := splitPath(pathname)
	if len(segments) == 0 {
		return 0
	}
	return len(segments) - 1
}

// Resolve selects the single best route for a request pathname. The
// candidate set is depth-filtered, then pattern-tested; ties on the
// specificity score break by lexical pathname order, so resolution is
// deterministic and idempotent for an unchanged manifest.
//
// The boolean is false when nothing matches; the caller re-resolves the
// reserved not-found pathname once.
func (m *Manifest) Resolve(ctx context.Context, pathname string) (*Match, bool, error) {
	if err := m.Ready(ctx); err != nil {
		return nil, false, err
	}

	pathname = Normalize(pathname)
	depth := PathDepth(pathname)

	var candidates []*Match
	for i := range m.routes {
		route := &m.routes[i]
		if route.Depth < depth {
			continue
		}
		if params, ok := route.Match(pathname); ok {
			candidates = append(candidates, &Match{Route: route, Params: params})
		}
	}

	switch len(candidates) {
	case 0:
		return nil, false, nil
	case 1:
		return candidates[0], true, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Route.Score != candidates[j].Route.Score {
			return candidates[i].Route.Score < candidates[j].Route.Score
		}
		return candidates[i].Route.Pathname < candidates[j].Route.Pathname
	})
	return candidates[0], true, nil
}
