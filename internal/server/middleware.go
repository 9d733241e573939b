package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/textcipher-go/internal/auth"
	"github.com/textcipher-go/internal/errors"
	"github.com/textcipher-go/internal/handler"
	"github.com/textcipher-go/internal/trace"
)

// RequestIDHeader carries the per-request trace ID
const RequestIDHeader = "X-Request-ID"

// TraceMiddleware adds request tracing context to each request. A client
// supplied X-Request-ID is kept so logs can be correlated across hops.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = trace.GenerateRequestID()
		}

		ctx := trace.WithRequestID(c.Request.Context(), reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(RequestIDHeader, reqID)
		c.Next()
	}
}

// LoggerMiddleware logs each HTTP request once it completes
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger := trace.Logger(c.Request.Context())
		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Int("bytes", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// CORSMiddleware handles CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, "+handler.FallbackHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// AuthMiddleware validates API tokens from the Authorization header or
// the token query parameter
func AuthMiddleware(j *auth.JWTAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}

		claims, err := j.ValidateToken(token)
		if err != nil {
			handler.RespondError(c, errors.NewUnauthorized(err.Error()))
			return
		}

		c.Set("subject", claims.Subject)
		c.Next()
	}
}
