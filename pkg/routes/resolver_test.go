package routes

import (
	"context"
	"testing"
	"testing/fstest"
)

func buildManifest(t *testing.T, files ...string) *Manifest {
	t.Helper()
	fsys := fstest.MapFS{}
	for _, f := range files {
		fsys[f] = &fstest.MapFile{Data: pageSrc("HandlerPage")}
	}
	routes, err := Build(fsys)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return FromRoutes(routes)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/blog/", "/blog"},
		{"blog", "/blog"},
		{"/index", "/"},
		{"/blog/index", "/blog"},
		{"/blog/post", "/blog/post"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathDepth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"/", 0},
		{"/a", 0},
		{"/a/b", 1},
		{"/a/b/c", 2},
	}
	for _, tt := range tests {
		if got := PathDepth(tt.in); got != tt.want {
			t.Errorf("PathDepth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResolveStaticBeatsCapture(t *testing.T) {
	m := buildManifest(t, "blog/[slug].go", "blog/featured.go")

	match, ok, err := m.Resolve(context.Background(), "/blog/featured")
	if err != nil || !ok {
		t.Fatalf("Resolve() = %v, %v", ok, err)
	}
	if match.Route.Pathname != "/blog/featured" {
		t.Errorf("resolved %q, want the static route", match.Route.Pathname)
	}

	match, ok, _ = m.Resolve(context.Background(), "/blog/other")
	if !ok || match.Route.Pathname != "/blog/:slug" {
		t.Errorf("resolved %v, want the capture route", match.Route)
	}
	if match.Params["slug"] != "other" {
		t.Errorf("slug = %q, want %q", match.Params["slug"], "other")
	}
}

func TestResolveCaptureBeatsCatchAll(t *testing.T) {
	m := buildManifest(t, "docs/[page].go", "docs/[...rest].go")

	match, ok, _ := m.Resolve(context.Background(), "/docs/setup")
	if !ok || match.Route.Pathname != "/docs/:page" {
		t.Fatalf("resolved %v, want /docs/:page", match.Route)
	}

	// Deeper paths only fit the catch-all.
	match, ok, _ = m.Resolve(context.Background(), "/docs/setup/linux")
	if !ok || match.Route.Pathname != "/docs/*rest" {
		t.Fatalf("resolved %v, want /docs/*rest", match.Route)
	}
	if match.Params["rest"] != "setup/linux" {
		t.Errorf("rest = %q, want %q", match.Params["rest"], "setup/linux")
	}
}

func TestResolveEarlierCaptureWins(t *testing.T) {
	// /[a]/x scores 1, /x/[b] scores 2; only one matches each path.
	m := buildManifest(t, "[section]/about.go", "about/[tab].go")

	match, ok, _ := m.Resolve(context.Background(), "/about/about")
	if !ok {
		t.Fatal("no match")
	}
	// Both match; /:section/about scores 1, /about/:tab scores 2.
	if match.Route.Pathname != "/:section/about" {
		t.Errorf("resolved %q, want the lower-scored route", match.Route.Pathname)
	}
}

func TestResolveTieBreaksLexically(t *testing.T) {
	// Two captures at the same position: same score, so pathname order
	// decides deterministically.
	m := buildManifest(t, "shop/[item].go", "shop/[sku].go")

	match, ok, _ := m.Resolve(context.Background(), "/shop/42")
	if !ok {
		t.Fatal("no match")
	}
	if match.Route.Pathname != "/shop/:item" {
		t.Errorf("resolved %q, want lexically first %q",
			match.Route.Pathname, "/shop/:item")
	}
}

func TestResolveDepthFilter(t *testing.T) {
	m := buildManifest(t, "blog/[slug].go")

	// A deeper request than any route's depth finds nothing.
	_, ok, err := m.Resolve(context.Background(), "/blog/2024/post")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ok {
		t.Error("depth filter let a too-deep request through")
	}
}

func TestResolveNoMatch(t *testing.T) {
	m := buildManifest(t, "index.go")

	match, ok, err := m.Resolve(context.Background(), "/missing")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ok || match != nil {
		t.Errorf("Resolve() = %+v, %v; want no match", match, ok)
	}
}

func TestResolveIdempotent(t *testing.T) {
	m := buildManifest(t, "blog/[slug].go", "blog/featured.go", "docs/[...rest].go")

	first, ok, err := m.Resolve(context.Background(), "/blog/hello")
	if err != nil || !ok {
		t.Fatalf("Resolve() = %v, %v", ok, err)
	}
	for i := 0; i < 5; i++ {
		again, ok, err := m.Resolve(context.Background(), "/blog/hello")
		if err != nil || !ok {
			t.Fatalf("Resolve() = %v, %v", ok, err)
		}
		if again.Route.Pathname != first.Route.Pathname {
			t.Fatalf("resolution changed: %q -> %q",
				first.Route.Pathname, again.Route.Pathname)
		}
		if again.Params["slug"] != first.Params["slug"] {
			t.Fatalf("params changed: %v -> %v", first.Params, again.Params)
		}
	}
}

func TestResolveIndexAliases(t *testing.T) {
	m := buildManifest(t, "blog/index.go")

	for _, p := range []string{"/blog", "/blog/", "/blog/index"} {
		match, ok, _ := m.Resolve(context.Background(), p)
		if !ok || match.Route.Pathname != "/blog" {
			t.Errorf("Resolve(%q) = %v, want /blog", p, match)
		}
	}
}
