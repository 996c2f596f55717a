package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns attributes evaluated when a record is handled.
type ContextProvider func() []slog.Attr

// SessionContext tags records with the session ID and the number of markers
// placed so far. markers may be nil.
func SessionContext(sessionID string, markers func() int) ContextProvider {
	return func() []slog.Attr {
		attrs := []slog.Attr{slog.String("session", sessionID)}
		if markers != nil {
			attrs = append(attrs, slog.Int("markers", markers()))
		}
		return attrs
	}
}

// ContextHandler wraps another handler and injects dynamic context attributes.
type ContextHandler struct {
	inner    slog.Handler
	provider ContextProvider
}

// NewContextHandler creates a handler that adds dynamic context to each record.
func NewContextHandler(inner slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{
		inner:    inner,
		provider: provider,
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		r = r.Clone()
		r.AddAttrs(h.provider()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs), provider: h.provider}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name), provider: h.provider}
}
