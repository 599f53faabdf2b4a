package tracing

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Middleware extracts W3C trace context from the request and runs the rest of the chain
// inside a server span. The span context travels in c.UserContext().
//
// Spans are recorded only once a TracerProvider is installed with otel.SetTracerProvider;
// until then the incoming trace id is still propagated.
func Middleware(name string) fiber.Handler {
	tracer := otel.Tracer(name)
	prop := otel.GetTextMapPropagator()
	if len(prop.Fields()) == 0 {
		// no global propagator installed
		prop = propagation.TraceContext{}
	}

	return func(c *fiber.Ctx) error {
		hdr := http.Header{}
		for k, vs := range c.GetReqHeaders() {
			for _, v := range vs {
				hdr.Add(k, v)
			}
		}
		ctx := prop.Extract(c.UserContext(), propagation.HeaderCarrier(hdr))
		ctx, span := tracer.Start(ctx, c.Method(), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		c.SetUserContext(ctx)

		err := c.Next()
		if err != nil {
			span.RecordError(err)
		}

		route := c.Route().Path
		status := c.Response().StatusCode()
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if err != nil || status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		return err
	}
}
