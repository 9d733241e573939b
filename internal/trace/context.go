package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	opTagKey     contextKey = "op_tag"
)

// GenerateRequestID generates a unique request ID in format "op-XXXXXX"
func GenerateRequestID() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "op-000000"
	}
	return "op-" + hex.EncodeToString(b)
}

// OpTag builds a tag like "encrypt:file"
func OpTag(operation, mode string) string {
	return operation + ":" + mode
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// EnsureRequestID returns ctx with a request ID, generating one if missing
func EnsureRequestID(ctx context.Context) context.Context {
	if GetRequestID(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, GenerateRequestID())
}

// WithOpTag adds an operation tag to context
func WithOpTag(ctx context.Context, tag string) context.Context {
	return context.WithValue(ctx, opTagKey, tag)
}

// GetOpTag retrieves the operation tag from context
func GetOpTag(ctx context.Context) string {
	if v, ok := ctx.Value(opTagKey).(string); ok {
		return v
	}
	return ""
}

// Logger returns the global logger annotated with the context's trace fields
func Logger(ctx context.Context) zerolog.Logger {
	l := log.With()
	if id := GetRequestID(ctx); id != "" {
		l = l.Str("op_id", id)
	}
	if tag := GetOpTag(ctx); tag != "" {
		l = l.Str("op", tag)
	}
	return l.Logger()
}
