package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/infra/logger"
)

const (
	// TraceIDHeader is the HTTP header name for trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for trace ID
	TraceIDKey = "trace_id"

	requestContextKey = "request_context"
)

// EnrichContext adds a trace ID and request metadata to each request.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		reqCtx := domain.RequestContext{}
		if ip := c.ClientIP(); ip != "" {
			reqCtx.IP = &ip
		}
		if ua := c.Request.UserAgent(); ua != "" {
			reqCtx.UserAgent = &ua
		}
		c.Set(requestContextKey, reqCtx)

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext retrieves request origin metadata for event payloads.
func GetRequestContext(c *gin.Context) domain.RequestContext {
	reqCtx := domain.RequestContext{}
	if ctx, exists := c.Get(requestContextKey); exists {
		if rc, ok := ctx.(domain.RequestContext); ok {
			reqCtx = rc
		}
	}
	if id, ok := c.Request.Context().Value(logger.RequestIDKey{}).(string); ok {
		reqCtx.RequestID = id
	}
	return reqCtx
}
