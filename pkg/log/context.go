package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithStream derives a context whose logger stamps the stream ID on
// every entry. Handlers call this once so the service and repository
// layers below them log the stream without threading the ID through.
func WithStream(ctx context.Context, streamID string) context.Context {
	logger := Ctx(ctx).With().Str(FieldStreamID, streamID).Logger()
	return WithLogger(ctx, logger)
}

// Ctx retrieves the logger from the context, falling back to the
// global logger when the request never went through GinMiddleware.
func Ctx(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}
