package middleware

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/strand-dev/strand/pkg/server"
)

// Default tracer name for strand applications.
const defaultTracerName = "strand"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "strand").
	TracerName string

	// Filter determines which requests to trace. Return true to trace
	// the request, false to skip. If nil, all requests are traced.
	Filter func(ctx *server.Ctx) bool

	// AttributeExtractor extracts custom attributes from the context.
	// Called for each traced request.
	AttributeExtractor func(ctx *server.Ctx) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(ctx *server.Ctx) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx *server.Ctx) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every dispatched request.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before starting the server:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) server.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return server.MiddlewareFunc(func(ctx *server.Ctx, next func() error) error {
		if config.Filter != nil && !config.Filter(ctx) {
			return next()
		}

		attrs := []attribute.KeyValue{
			attribute.String("http.method", ctx.Method()),
			attribute.String("strand.path", ctx.Path()),
			attribute.Int("strand.param_count", len(ctx.Params())),
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(ctx)...)
		}

		_, span := config.tracer.Start(
			ctx.Context(),
			fmt.Sprintf("strand %s", ctx.Path()),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := next()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	})
}
