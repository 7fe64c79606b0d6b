// Package markup defines the content tree consumed by the strand renderer.
//
// A tree is built from Nodes. Each Node carries an explicit Kind
// discriminator; the renderer switches exhaustively over kinds, so every
// node is one of: escaped text, raw markup, an ordered group, a pending
// asynchronous value, a byte stream, a lazy sequence, a thunk, or a
// deferred thunk (a suspense site whose content arrives out of order).
//
// Handlers typically build trees with the element helpers:
//
//	markup.El("div", markup.Attrs{"class": "card"},
//	    markup.El("h1", nil, markup.Text(post.Title)),
//	    markup.Text(post.Body),
//	)
package markup
