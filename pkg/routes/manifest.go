package routes

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Manifest is the compiled route set for one process. It is built once,
// asynchronously, and read-only afterwards; readers gate on Ready before
// the first lookup.
type Manifest struct {
	routes []Route
	err    error
	ready  chan struct{}
}

// Build compiles every route file under fsys into a Route. The walk is
// fatal on the first file that fails to compile: the service cannot
// safely start with unknown routing.
func Build(fsys fs.FS) ([]Route, error) {
	var routes []Route

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(p, ".go") || strings.HasSuffix(p, "_test.go") {
			return nil
		}
		// Underscore-prefixed files are reserved, not routes.
		if strings.HasPrefix(path.Base(p), "_") {
			return nil
		}

		route, err := scanFile(fsys, p)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		routes = append(routes, *route)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic manifest order regardless of walk order.
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Pathname < routes[j].Pathname
	})

	return routes, nil
}

// BuildAsync starts the manifest build concurrently with the server's
// first requests. Lookups queue on Ready until construction completes.
func BuildAsync(fsys fs.FS) *Manifest {
	m := &Manifest{ready: make(chan struct{})}
	go func() {
		defer close(m.ready)
		m.routes, m.err = Build(fsys)
	}()
	return m
}

// FromRoutes wraps an already-built route set, mainly for tests.
func FromRoutes(routes []Route) *Manifest {
	m := &Manifest{routes: routes, ready: make(chan struct{})}
	close(m.ready)
	return m
}

// Ready blocks until the manifest build has finished or ctx is done. It
// returns the build error, if any.
func (m *Manifest) Ready(ctx context.Context) error {
	select {
	case <-m.ready:
		return m.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Routes returns the compiled routes. Callers must have passed Ready.
func (m *Manifest) Routes() []Route {
	return m.routes
}

// scanFile compiles one route file into a Route. The file's declarations
// decide its kind: a file exporting a handler whose name ends in "Page"
// is a page; everything else is an endpoint.
func scanFile(fsys fs.FS, p string) (*Route, error) {
	src, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, p, src, 0)
	if err != nil {
		return nil, err
	}

	kind := KindEndpoint
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv != nil || fn.Name == nil || !fn.Name.IsExported() {
			continue
		}
		if strings.HasSuffix(fn.Name.Name, "Page") {
			kind = KindPage
			break
		}
	}

	logical := logicalPath(p)
	pathname, patternSource, pattern, score, depth, err := compilePattern(logical)
	if err != nil {
		return nil, err
	}

	return &Route{
		Pathname:        pathname,
		PatternSource:   patternSource,
		Pattern:         pattern,
		Kind:            kind,
		Score:           score,
		Depth:           depth,
		HandlerLocation: p,
	}, nil
}

// logicalPath strips the extension and any trailing index segment from a
// route file path.
func logicalPath(p string) string {
	logical := strings.TrimSuffix(p, ".go")

	if logical == "index" {
		return "/"
	}
	logical = strings.TrimSuffix(logical, "/index")

	return "/" + logical
}
