package markup

import (
	"context"
	"fmt"
	"io"
	"iter"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindText     Kind = iota // Escaped text
	KindRaw                  // Raw markup, written verbatim
	KindGroup                // Ordered sequence of children
	KindFuture               // Pending asynchronous subtree
	KindStream               // Byte stream, drained in order
	KindSeq                  // Lazy sequence of nodes, single pass
	KindThunk                // Deferred construction, invoked inline
	KindDeferred             // Suspense site, resolved out of order
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindRaw:
		return "Raw"
	case KindGroup:
		return "Group"
	case KindFuture:
		return "Future"
	case KindStream:
		return "Stream"
	case KindSeq:
		return "Seq"
	case KindThunk:
		return "Thunk"
	case KindDeferred:
		return "Deferred"
	default:
		return "Unknown"
	}
}

// ThunkFunc lazily produces a subtree. The renderer invokes plain thunks
// inline; deferred thunks are invoked by the stream encoder, concurrently
// with the main document walk.
type ThunkFunc func(ctx context.Context) (*Node, error)

// Node is one vertex of a content tree. Exactly the fields relevant to
// its Kind are set; the rest are zero.
type Node struct {
	Kind     Kind
	Text     string          // KindText, KindRaw
	Children []*Node         // KindGroup
	Future   *Future         // KindFuture
	Reader   io.Reader       // KindStream
	Seq      iter.Seq[*Node] // KindSeq
	Thunk    ThunkFunc       // KindThunk, KindDeferred
	DeferID  string          // KindDeferred correlation identifier
}

// Text creates an escaped text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Textf creates an escaped text node from a format string.
func Textf(format string, args ...any) *Node {
	return &Node{Kind: KindText, Text: fmt.Sprintf(format, args...)}
}

// Raw creates a raw markup node. The text is written verbatim, without
// escaping; callers are responsible for its safety.
func Raw(s string) *Node {
	return &Node{Kind: KindRaw, Text: s}
}

// Group creates an ordered sequence node. Children render in order;
// nil children render nothing.
func Group(children ...*Node) *Node {
	return &Node{Kind: KindGroup, Children: children}
}

// Async wraps a pending value. The renderer awaits it in document order.
func Async(f *Future) *Node {
	return &Node{Kind: KindFuture, Future: f}
}

// Stream wraps a byte stream. The renderer drains it in order and writes
// the bytes verbatim.
func Stream(r io.Reader) *Node {
	return &Node{Kind: KindStream, Reader: r}
}

// Iter wraps a lazy sequence of nodes. The sequence may be infinite; it
// is consumed exactly once, in order.
func Iter(seq iter.Seq[*Node]) *Node {
	return &Node{Kind: KindSeq, Seq: seq}
}

// Lazy wraps a thunk invoked inline during rendering.
func Lazy(fn ThunkFunc) *Node {
	return &Node{Kind: KindThunk, Thunk: fn}
}

// Deferred tags a thunk as a suspense site. The renderer never invokes it
// inline: it emits a placeholder carrying id in document order and hands
// the thunk to the stream encoder, which resolves it concurrently and
// flushes the replacement payload out of order.
func Deferred(id string, fn ThunkFunc) *Node {
	return &Node{Kind: KindDeferred, DeferID: id, Thunk: fn}
}
