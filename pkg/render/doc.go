// Package render flattens content trees into ordered HTML byte streams.
//
// The flattener walks a markup.Node tree depth-first, left to right,
// producing chunks in document order. Deferred nodes are never resolved
// inline: the encoder emits a placeholder for each one, keeps pulling the
// main stream, and flushes each replacement payload whenever its boundary
// settles. Payloads arrive out of document order, but each one is atomic
// and self-contained, so arrival order does not matter to the client.
package render
