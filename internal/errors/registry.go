package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Routing Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryRouting,
		Message:  "Route file failed to compile",
		Detail:   "A file in the pages tree could not be compiled into a valid route pattern. The server cannot start with unknown routing.",
	},
	"E102": {
		Category: CategoryRouting,
		Message:  "Manifest build failed",
		Detail:   "The route manifest could not be constructed from the pages tree.",
	},
	"E103": {
		Category: CategoryRouting,
		Message:  "Manifest not ready",
		Detail:   "A request arrived before the route manifest finished building and the wait was cancelled.",
	},

	// ============================================
	// Handler Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryHandler,
		Message:  "No handler registered for route",
		Detail:   "A route matched but no handler is registered under its pathname. This is a configuration error for that route, not a per-request condition.",
	},
	"E202": {
		Category: CategoryHandler,
		Message:  "Handler failed",
		Detail:   "The route handler returned an error while producing its content tree.",
	},

	// ============================================
	// Render Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryRender,
		Message:  "Stream encoding failed",
		Detail:   "The response stream could not be fully encoded and was terminated early.",
	},

	// ============================================
	// Config Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "strand.json exists but could not be parsed.",
	},
}
