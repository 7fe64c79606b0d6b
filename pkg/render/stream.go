package render

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/strand-dev/strand/pkg/markup"
)

// ErrAborted is returned once the encoder's abort flag is set. No bytes
// are written after the check point that observes the flag.
var ErrAborted = errors.New("render: stream aborted")

// Config configures a stream encoder.
type Config struct {
	// ChunkDelay pauses after each main-stream chunk. Useful for
	// throttling tests; zero disables it.
	ChunkDelay time.Duration

	// Logger receives boundary resolution failures. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Stats reports what one encoder run emitted.
type Stats struct {
	// BytesWritten counts bytes emitted to the output stream.
	BytesWritten int64

	// DeferredSpawned counts deferred boundaries encountered.
	DeferredSpawned int64

	// DeferredFlushed counts replacement payloads actually written.
	DeferredFlushed int64

	// DeferredDropped counts boundaries whose output was discarded,
	// either because resolution failed or the stream was aborted.
	DeferredDropped int64
}

// Encoder drives the flattener over one response's content tree and
// writes encoded chunks to the output stream. Main-stream chunks are
// emitted strictly in document order. Deferred payloads are emitted in
// settlement order, each one atomically, and the encoder only returns
// once every outstanding boundary has flushed or been discarded.
//
// If the writer implements http.Flusher, output is flushed after every
// write so deferred content reaches the client as soon as it settles.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
	cfg     Config

	mu      sync.Mutex // serializes writes; payloads stay atomic
	wg      sync.WaitGroup
	aborted atomic.Bool

	bytesWritten    atomic.Int64
	deferredSpawned atomic.Int64
	deferredFlushed atomic.Int64
	deferredDropped atomic.Int64
}

// NewEncoder creates a stream encoder writing to w.
func NewEncoder(w io.Writer, cfg Config) *Encoder {
	flusher, _ := w.(http.Flusher)
	return &Encoder{
		w:       w,
		flusher: flusher,
		cfg:     cfg,
	}
}

// Render flattens root and streams it. It returns after the main walk
// has finished and every outstanding deferred boundary has settled and
// flushed. Cancelling ctx sets the abort flag: no further bytes are
// enqueued past the next check point, and in-flight boundary results are
// discarded once they settle.
func (e *Encoder) Render(ctx context.Context, root *markup.Node) error {
	stop := context.AfterFunc(ctx, e.Abort)
	defer stop()

	walkErr := Flatten(ctx, root, func(c Chunk) error {
		if e.aborted.Load() {
			return ErrAborted
		}

		if c.Deferred != nil {
			if err := e.write(placeholder(c.Deferred.DeferID)); err != nil {
				return err
			}
			e.spawn(ctx, c.Deferred)
			return nil
		}

		if err := e.write(c.Text); err != nil {
			return err
		}
		if e.cfg.ChunkDelay > 0 {
			time.Sleep(e.cfg.ChunkDelay)
		}
		return nil
	})

	// Outstanding boundaries are awaited even on abort, so their side
	// effects complete; their output is dropped by the abort flag.
	e.wg.Wait()

	return walkErr
}

// Abort sets the abort flag. The flag is checked before every emission
// and before new flattening work starts.
func (e *Encoder) Abort() {
	e.aborted.Store(true)
}

// Stats returns emission counters for this encoder run.
func (e *Encoder) Stats() Stats {
	return Stats{
		BytesWritten:    e.bytesWritten.Load(),
		DeferredSpawned: e.deferredSpawned.Load(),
		DeferredFlushed: e.deferredFlushed.Load(),
		DeferredDropped: e.deferredDropped.Load(),
	}
}

// spawn starts resolving a deferred boundary concurrently with the main
// walk.
func (e *Encoder) spawn(ctx context.Context, node *markup.Node) {
	e.deferredSpawned.Add(1)
	e.wg.Add(1)
	go e.resolve(ctx, node)
}

// resolve invokes a deferred thunk, flattens its result into a buffer,
// and writes the replacement payload in one atomic emission. Nested
// deferred nodes inside the payload get their own placeholder and join
// the same outstanding set. Boundary-local failures never abort the
// stream; they drop only their own payload.
func (e *Encoder) resolve(ctx context.Context, node *markup.Node) {
	defer e.wg.Done()

	content, err := node.Thunk(ctx)

	var buf bytes.Buffer
	if err == nil {
		err = Flatten(ctx, content, func(c Chunk) error {
			if c.Deferred != nil {
				buf.WriteString(placeholder(c.Deferred.DeferID))
				e.spawn(ctx, c.Deferred)
				return nil
			}
			buf.WriteString(c.Text)
			return nil
		})
	}

	if err != nil {
		e.deferredDropped.Add(1)
		e.logger().Warn("deferred boundary failed",
			slog.String("boundary", node.DeferID),
			slog.Any("error", err))
		return
	}

	if e.aborted.Load() {
		e.deferredDropped.Add(1)
		return
	}

	payload := payloadOpen(node.DeferID) + buf.String() + payloadClose(node.DeferID)
	if err := e.write(payload); err != nil {
		e.deferredDropped.Add(1)
		return
	}
	e.deferredFlushed.Add(1)
}

// write emits one chunk under the encoder lock and flushes it.
func (e *Encoder) write(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.aborted.Load() {
		return ErrAborted
	}

	n, err := io.WriteString(e.w, s)
	e.bytesWritten.Add(int64(n))
	if err != nil {
		e.aborted.Store(true)
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// logger returns the configured logger or the default one.
func (e *Encoder) logger() *slog.Logger {
	if e.cfg.Logger != nil {
		return e.cfg.Logger
	}
	return slog.Default()
}

// FlushableWriter wraps an io.Writer with flush counting. It is useful
// for testing streaming behavior without an http.ResponseWriter.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
