package render

import (
	"context"
	"fmt"
	"io"

	"github.com/strand-dev/strand/pkg/markup"
)

// Chunk is one unit of flattener output: either literal markup text, or
// a deferred node surfaced to the caller without being invoked.
type Chunk struct {
	Text     string
	Deferred *markup.Node
}

// streamBufSize is the read size used when draining byte stream nodes.
const streamBufSize = 4096

// Flatten walks a content tree depth-first, left to right, calling emit
// for each output chunk in document order. Pending asynchronous values
// are awaited in place; plain thunks are invoked in place; deferred
// thunks are emitted as opaque chunks and never invoked here.
//
// A nil node emits nothing. An error from emit, from an awaited value,
// or from an inline thunk aborts the walk.
func Flatten(ctx context.Context, node *markup.Node, emit func(Chunk) error) error {
	if node == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	switch node.Kind {
	case markup.KindText:
		if node.Text == "" {
			return nil
		}
		return emit(Chunk{Text: markup.EscapeText(node.Text)})

	case markup.KindRaw:
		if node.Text == "" {
			return nil
		}
		return emit(Chunk{Text: node.Text})

	case markup.KindGroup:
		for _, child := range node.Children {
			if err := Flatten(ctx, child, emit); err != nil {
				return err
			}
		}
		return nil

	case markup.KindFuture:
		resolved, err := node.Future.Await(ctx)
		if err != nil {
			return fmt.Errorf("render: awaiting subtree: %w", err)
		}
		return Flatten(ctx, resolved, emit)

	case markup.KindStream:
		return drainStream(ctx, node.Reader, emit)

	case markup.KindSeq:
		for child := range node.Seq {
			if err := Flatten(ctx, child, emit); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil

	case markup.KindThunk:
		resolved, err := node.Thunk(ctx)
		if err != nil {
			return fmt.Errorf("render: invoking thunk: %w", err)
		}
		return Flatten(ctx, resolved, emit)

	case markup.KindDeferred:
		// Opaque to the flattener; the encoder owns its resolution.
		return emit(Chunk{Deferred: node})

	default:
		return fmt.Errorf("render: unknown node kind: %d", node.Kind)
	}
}

// drainStream reads a byte stream node to EOF, emitting raw chunks in
// order.
func drainStream(ctx context.Context, r io.Reader, emit func(Chunk) error) error {
	buf := make([]byte, streamBufSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if emitErr := emit(Chunk{Text: string(buf[:n])}); emitErr != nil {
				return emitErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("render: draining stream: %w", err)
		}
	}
}
