package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	callerIDKey  ctxKey = "caller_id"
)

// Config keeps the logger settings local so this package does not depend on
// the config package.
type Config struct {
	Level    string
	Encoding string
}

// New builds the engine's zap logger. Unknown levels fall back to info,
// unknown encodings to JSON.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = zap.NewAtomicLevelAt(parsed)
	}

	encoding := cfg.Encoding
	if encoding != "console" {
		encoding = "json"
	}

	zapCfg := zap.Config{
		Level:            level,
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}

// ContextWithRequestID attaches a request ID to the provided context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// ContextWithCallerID attaches the authenticated caller to the context.
func ContextWithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerIDKey, callerID)
}

// CallerID extracts the authenticated caller, empty when unauthenticated.
func CallerID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if callerID, ok := ctx.Value(callerIDKey).(string); ok {
		return callerID
	}
	return ""
}

// FromContext enriches the logger with request and caller identifiers stored
// in the context.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		base = base.With(zap.String("request_id", reqID))
	}
	if callerID, ok := ctx.Value(callerIDKey).(string); ok && callerID != "" {
		base = base.With(zap.String("caller_id", callerID))
	}
	return base
}
