package telemetry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName          = "workoutlog-api"
	correlationIDHeader = "X-Correlation-ID"
	traceIDHeader       = "X-Trace-ID"
)

// routeResources names the :id parameter of each resource route on the span
var routeResources = []struct {
	prefix string
	key    attribute.Key
}{
	{prefix: "/v1/admin/plans/", key: "plan.id"},
	{prefix: "/v1/admin/exercises/", key: "exercise.id"},
}

// FiberMiddleware traces every request. The span is named after the matched
// route template, and carries the caller (read from the userIDKey local once
// auth has run), the correlation id and the plan or exercise id of the route.
func FiberMiddleware(userIDKey string) fiber.Handler {
	tracer := otel.Tracer(tracerName)
	propagator := otel.GetTextMapPropagator()

	return func(c *fiber.Ctx) error {
		ctx := propagator.Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		// Renamed once routing has resolved the template
		ctx, span := tracer.Start(ctx, c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("http.client_ip", c.IP()),
				attribute.Int("http.request_content_length", len(c.Body())),
			),
		)
		defer span.End()

		if id := c.Get(correlationIDHeader); id != "" {
			span.SetAttributes(attribute.String("request.correlation_id", id))
		}

		c.SetUserContext(ctx)
		if span.SpanContext().HasTraceID() {
			c.Set(traceIDHeader, span.SpanContext().TraceID().String())
		}

		err := c.Next()

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(requestAttributes(c, route, userIDKey)...)

		statusCode := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", statusCode))

		var fiberErr *fiber.Error
		switch {
		case err != nil:
			span.RecordError(err)
			if !errors.As(err, &fiberErr) || fiberErr.Code >= fiber.StatusInternalServerError {
				span.SetStatus(codes.Error, err.Error())
			}
		case statusCode >= fiber.StatusInternalServerError:
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
		}

		return err
	}
}

func requestAttributes(c *fiber.Ctx, route, userIDKey string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("http.route", route)}

	if userID, ok := c.Locals(userIDKey).(string); ok && userID != "" {
		attrs = append(attrs, attribute.String("user.id", userID))
	}

	if id := c.Params("id"); id != "" {
		for _, r := range routeResources {
			if strings.HasPrefix(route, r.prefix) {
				attrs = append(attrs, r.key.String(id))
				break
			}
		}
	}
	return attrs
}

// AddSpanEvent adds an event to the request span
func AddSpanEvent(c *fiber.Ctx, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(c.UserContext()).AddEvent(name, trace.WithAttributes(attrs...))
}
