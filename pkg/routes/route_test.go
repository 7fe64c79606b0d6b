package routes

import (
	"math"
	"testing"
)

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		name      string
		logical   string
		pathname  string
		score     int
		depth     int
		match     string
		params    map[string]string
		noMatch   []string
		wantError bool
	}{
		{
			name:     "root",
			logical:  "/",
			pathname: "/",
			score:    0,
			depth:    0,
			match:    "/",
		},
		{
			name:     "static",
			logical:  "/about",
			pathname: "/about",
			score:    0,
			depth:    0,
			match:    "/about",
			noMatch:  []string{"/about/me", "/abou"},
		},
		{
			name:     "nested static",
			logical:  "/docs/setup",
			pathname: "/docs/setup",
			score:    0,
			depth:    1,
			match:    "/docs/setup",
		},
		{
			name:     "named first segment",
			logical:  "/[slug]",
			pathname: "/:slug",
			score:    1,
			depth:    0,
			match:    "/hello",
			params:   map[string]string{"slug": "hello"},
			noMatch:  []string{"/a/b"},
		},
		{
			name:     "named second segment",
			logical:  "/blog/[slug]",
			pathname: "/blog/:slug",
			score:    2,
			depth:    1,
			match:    "/blog/first-post",
			params:   map[string]string{"slug": "first-post"},
		},
		{
			name:     "two captures sum positions",
			logical:  "/[a]/x/[b]",
			pathname: "/:a/x/:b",
			score:    4,
			depth:    2,
			match:    "/1/x/2",
			params:   map[string]string{"a": "1", "b": "2"},
		},
		{
			name:     "catch-all saturates",
			logical:  "/docs/[...path]",
			pathname: "/docs/*path",
			score:    math.MaxInt,
			depth:    math.MaxInt,
			match:    "/docs/a/b/c",
			params:   map[string]string{"path": "a/b/c"},
			noMatch:  []string{"/docs"},
		},
		{
			name:      "catch-all must be trailing",
			logical:   "/docs/[...path]/extra",
			wantError: true,
		},
		{
			name:      "malformed brackets",
			logical:   "/blog/[slug",
			wantError: true,
		},
		{
			name:      "duplicate capture names",
			logical:   "/[x]/[x]",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pathname, _, pattern, score, depth, err := compilePattern(tt.logical)
			if tt.wantError {
				if err == nil {
					t.Fatalf("compilePattern(%q) accepted, want error", tt.logical)
				}
				return
			}
			if err != nil {
				t.Fatalf("compilePattern(%q) error = %v", tt.logical, err)
			}
			if pathname != tt.pathname {
				t.Errorf("pathname = %q, want %q", pathname, tt.pathname)
			}
			if score != tt.score {
				t.Errorf("score = %d, want %d", score, tt.score)
			}
			if depth != tt.depth {
				t.Errorf("depth = %d, want %d", depth, tt.depth)
			}

			r := &Route{Pathname: pathname, Pattern: pattern, Score: score, Depth: depth}
			params, ok := r.Match(tt.match)
			if !ok {
				t.Fatalf("pattern rejected %q", tt.match)
			}
			for name, want := range tt.params {
				if params[name] != want {
					t.Errorf("param %q = %q, want %q", name, params[name], want)
				}
			}
			for _, p := range tt.noMatch {
				if _, ok := r.Match(p); ok {
					t.Errorf("pattern accepted %q", p)
				}
			}
		})
	}
}

func TestKindStringer(t *testing.T) {
	if KindPage.String() != "page" || KindEndpoint.String() != "endpoint" {
		t.Errorf("kind strings: %s / %s", KindPage, KindEndpoint)
	}
}
