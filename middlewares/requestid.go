package middlewares

import (
	"github.com/dmitrymomot/servant/internal"
	"github.com/dmitrymomot/servant/pkg/id"
	"github.com/dmitrymomot/servant/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name
	Headers        []string      // Headers to check for existing ID (in order)
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestIDMiddleware assigns every request an ID.
type RequestIDMiddleware struct {
	source    internal.Extractor
	generator func() string
	header    string
}

// RequestID returns middleware that assigns a unique request ID to each request.
// The ID is taken from the first configured request header that carries one,
// or generated as a ULID. It is stored on the context and echoed in the
// response header.
func RequestID(opts ...RequestIDOption) *RequestIDMiddleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      id.NewULID,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sources := make([]internal.ExtractorSource, 0, len(cfg.Headers))
	for _, h := range cfg.Headers {
		sources = append(sources, internal.FromHeader(h))
	}
	return &RequestIDMiddleware{
		source:    internal.NewExtractor(sources...),
		generator: cfg.Generator,
		header:    cfg.ResponseHeader,
	}
}

func (m *RequestIDMiddleware) Name() string { return "request_id" }

func (m *RequestIDMiddleware) Start(c *internal.Context) error {
	reqID, ok := m.source.Extract(c)
	if !ok {
		reqID = m.generator()
	}
	c.Set(requestIDKey{}, reqID)
	if m.header != "" {
		c.SetHeader(m.header, reqID)
	}
	return nil
}

// GetRequestID returns the request ID, or "" when the middleware is not in use.
func GetRequestID(c *internal.Context) string {
	return internal.ContextValue[string](c, requestIDKey{})
}

// RequestIDExtractor returns a ContextExtractor adding "request_id" to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return logger.FromContext[string](requestIDKey{}, "request_id")
}
