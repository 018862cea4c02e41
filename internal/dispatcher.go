package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"github.com/dmitrymomot/servant/pkg/cookie"
	"github.com/dmitrymomot/servant/pkg/logger"
	"github.com/dmitrymomot/servant/pkg/static"
)

// requestNumberModulo bounds request numbers so log lines stay short.
const requestNumberModulo = 1_000_000

// Stage is a step of the request pipeline.
type Stage uint8

const (
	StageRouting Stage = iota
	StageStarting
	StageHandling
	StageCompleting
	StageFormatting
	StageDone
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageRouting:
		return "routing"
	case StageStarting:
		return "starting"
	case StageHandling:
		return "handling"
	case StageCompleting:
		return "completing"
	case StageFormatting:
		return "formatting"
	case StageDone:
		return "done"
	case StageError:
		return "error"
	}
	return "unknown"
}

// RequestNumberExtractor adds the per-request number to log records as "req".
func RequestNumberExtractor() logger.ContextExtractor {
	return logger.FromContext[int](requestNumberKey{}, "req")
}

// Dispatcher runs requests through routing, middleware, the handler and the
// formatter. It is built by ServerConfig.Build and is safe for concurrent use;
// everything it shares between requests is read-only.
type Dispatcher struct {
	routes    *RouteTable
	pipeline  *pipeline
	formatter *Formatter
	static    *static.Registry
	sessions  *SessionManager
	jar       *cookie.Manager
	logger    *slog.Logger
	maxBody   int64
	forwarded bool
	counter   atomic.Uint64
}

// Routes returns the registered routes in registration order.
func (d *Dispatcher) Routes() []*Route { return d.routes.Routes() }

// Dispatch processes one request and returns the formatted response.
// Request failures are turned into responses; Dispatch never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) *Response {
	if ctx == nil {
		ctx = context.Background()
	}
	ip := req.RemoteAddr
	if d.forwarded {
		if fwd := req.ForwardedFor(); fwd != "" {
			ip = fwd
		}
	}
	c := &Context{
		parent:   ctx,
		request:  req,
		ip:       ip,
		response: newResponse(d.jar),
		args:     make(Args),
		logger:   d.logger,
		static:   d.static,
		sessions: d.sessions,
		id:       int(d.counter.Add(1) % requestNumberModulo),
	}
	d.run(c)
	return c.response
}

// ServeHTTP adapts the dispatcher to net/http.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := ReadRequest(r, d.maxBody)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		d.logger.InfoContext(r.Context(), "rejected request",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		w.Header().Set("Cache-Control", CacheControlNever)
		http.Error(w, http.StatusText(code), code)
		return
	}

	resp := d.Dispatch(r.Context(), req)
	if err := resp.Send(w); err != nil {
		d.logger.DebugContext(r.Context(), "write response", slog.Any("error", err))
	}
}

func (d *Dispatcher) run(c *Context) {
	c.stage = StageRouting
	if route, values, ok := d.routes.Resolve(c.request.Path()); ok {
		c.route = route
		for i, name := range route.URLVars {
			c.args[name] = values[i]
		}
	}

	c.stage = StageStarting
	for _, s := range d.pipeline.starters {
		if err := protect(func() error { return s.Start(c) }); err != nil {
			c.failure = err
			break
		}
	}

	if c.failure == nil {
		c.stage = StageHandling
		if c.route == nil {
			c.failure = &NotFoundError{Path: c.request.Path()}
		} else {
			c.failure = d.handle(c)
		}
	}

	// Completers see the final status of failed requests.
	if c.failure != nil {
		d.translate(c)
	}

	c.stage = StageCompleting
	for _, h := range d.pipeline.completers {
		if err := protect(func() error { return h.Complete(c) }); err != nil {
			c.Logger().ErrorContext(c, "complete hook failed",
				slog.String("middleware", middlewareName(h)),
				slog.Any("error", err),
			)
		}
	}

	c.stage = StageFormatting
	if err := d.formatter.Format(c.request, c.response); err != nil {
		c.Logger().ErrorContext(c, "cannot format response",
			slog.String("path", c.request.Path()),
			slog.Any("error", err),
		)
		c.failure = errors.Join(c.failure, err)
		resp := c.response
		resp.Header.Del("Content-Type")
		resp.Header.Del("Content-Encoding")
		resp.Status = StatusOf(err)
		resp.Body = internalErrorBody
		if err := d.formatter.Format(c.request, resp); err != nil {
			resp.Body = nil
			_ = d.formatter.Format(c.request, resp)
		}
		// Completers already ran with the handler's status.
		c.Logger().ErrorContext(c, "response replaced after formatting",
			slog.String("path", c.request.Path()),
			slog.Int("status", resp.Status),
		)
	}

	if c.failure != nil {
		c.stage = StageError
		return
	}
	c.stage = StageDone
}

// handle assembles the handler arguments and calls the handler.
func (d *Dispatcher) handle(c *Context) error {
	route := c.route
	if len(route.FormVars) > 0 {
		if err := c.request.FormError(); err != nil {
			return ErrBadRequest(WithError(err), WithDetail("malformed request body"))
		}
	}
	for _, name := range route.FormVars {
		v, ok := c.request.Form[name]
		if !ok {
			return &MissingParameterError{Name: name}
		}
		c.args[name] = v
	}

	var body any
	err := protect(func() error {
		var err error
		body, err = route.Handler(c, c.args)
		return err
	})
	if err != nil {
		return err
	}
	if body != nil || c.response.Body == nil {
		c.response.Body = body
	}
	return nil
}

// translate replaces the response with the one c.failure maps to. Headers
// set before the failure are kept, except those describing the old body.
func (d *Dispatcher) translate(c *Context) {
	err := c.failure
	status := StatusOf(err)

	resp := c.response
	resp.Header.Del("Content-Type")
	resp.Header.Del("Content-Encoding")
	resp.Status = status
	resp.Body = errorBody(err, status)

	if expected(err) {
		c.Logger().InfoContext(c, "request failed",
			slog.String("path", c.request.Path()),
			slog.Int("status", status),
			slog.Any("error", err),
		)
		return
	}
	attrs := []any{
		slog.String("path", c.request.Path()),
		slog.Int("status", status),
		slog.String("stage", c.stage.String()),
		slog.Any("error", err),
	}
	var p *PanicError
	if errors.As(err, &p) {
		attrs = append(attrs, slog.String("stack", string(p.Stack)))
	}
	c.Logger().ErrorContext(c, "request error", attrs...)
}

// protect runs fn, converting a panic into a PanicError.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
