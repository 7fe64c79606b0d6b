package render

import "github.com/strand-dev/strand/pkg/markup"

// Deferred payload wire format.
//
// In document order the encoder emits an empty placeholder template:
//
//	<template data-strand-slot="ID"></template>
//
// Later, whenever the boundary settles, a self-contained payload follows:
//
//	<template data-strand-chunk="ID">...content...</template>
//	<script>...swap...</script>
//
// The swap script moves the payload template's content into the
// placeholder's position and removes itself, so the delivered document
// ends up identical to a fully inline render. Because every payload
// carries its own identifier, payloads are safe to deliver in any order.

// placeholder returns the inline placeholder for a boundary.
func placeholder(id string) string {
	return `<template data-strand-slot="` + markup.EscapeAttr(id) + `"></template>`
}

// payloadOpen returns the opening tag of a replacement payload.
func payloadOpen(id string) string {
	return `<template data-strand-chunk="` + markup.EscapeAttr(id) + `">`
}

// payloadClose closes a replacement payload and appends the swap script.
func payloadClose(id string) string {
	esc := markup.EscapeAttr(id)
	return `</template><script>(function(){` +
		`var c=document.querySelector('template[data-strand-chunk="` + esc + `"]');` +
		`var s=document.querySelector('template[data-strand-slot="` + esc + `"]');` +
		`if(c&&s){s.replaceWith(c.content);c.remove();}` +
		`var me=document.currentScript;if(me){me.remove();}` +
		`})();</script>`
}
