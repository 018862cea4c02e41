package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// FromContext returns an extractor logging the value stored under key as name.
// Zero values are skipped.
func FromContext[T comparable](key any, name string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		v, ok := ctx.Value(key).(T)
		var zero T
		if !ok || v == zero {
			return slog.Attr{}, false
		}
		return slog.Any(name, v), true
	}
}

// contextHandler adds extracted attributes to every record. Extraction runs
// per call so request-scoped values are always current.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func withExtractors(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &contextHandler{next: next, extractors: clean}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
