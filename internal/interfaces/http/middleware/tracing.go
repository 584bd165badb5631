package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ActorHeader identifies the operator behind a request
const ActorHeader = "X-User-ID"

// maxActorIDLength bounds header values copied into span attributes
const maxActorIDLength = 64

// Tracing returns the otelgin server span middleware followed by one that tags
// the span with the request and actor IDs. Spans are named after the route pattern.
func Tracing(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		spanAttributes(),
	}
}

func spanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if actor := c.GetHeader(ActorHeader); actor != "" {
				if len(actor) > maxActorIDLength {
					actor = actor[:maxActorIDLength]
				}
				span.SetAttributes(attribute.String("actor_id", actor))
			}
		}
		c.Next()
	}
}
