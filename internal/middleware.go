package internal

import "fmt"

// Middleware is a cross-cutting component of the request pipeline.
//
// A middleware takes part in whichever phases it implements: Starter,
// Completer, RouteRegistrar. Registration order is the order of both the
// start and the complete phase. A value implementing none of them is
// rejected by ServerConfig.Use.
type Middleware any

// Starter runs before the handler. A non-nil error stops the remaining
// Start hooks and the handler; Complete hooks still run.
type Starter interface {
	Start(c *Context) error
}

// Completer runs after the handler, or after a failure, for every request.
// Errors are logged and never change the response.
type Completer interface {
	Complete(c *Context) error
}

// RouteRegistrar validates or annotates routes as they are registered.
// An error aborts registration of that route.
type RouteRegistrar interface {
	RegisterRoute(r *Route) error
}

// StartFunc adapts a function to a Starter.
type StartFunc func(c *Context) error

func (f StartFunc) Start(c *Context) error { return f(c) }

// CompleteFunc adapts a function to a Completer.
type CompleteFunc func(c *Context) error

func (f CompleteFunc) Complete(c *Context) error { return f(c) }

// middlewareName returns a middleware's Name() when it has one.
func middlewareName(mw Middleware) string {
	if n, ok := mw.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", mw)
}

// pipeline is the frozen middleware list split by capability.
type pipeline struct {
	starters   []Starter
	completers []Completer
	registrars []RouteRegistrar
}

func (p *pipeline) add(mw Middleware) error {
	if mw == nil {
		return configError("nil middleware")
	}
	var hooked bool
	if s, ok := mw.(Starter); ok {
		p.starters = append(p.starters, s)
		hooked = true
	}
	if c, ok := mw.(Completer); ok {
		p.completers = append(p.completers, c)
		hooked = true
	}
	if r, ok := mw.(RouteRegistrar); ok {
		p.registrars = append(p.registrars, r)
		hooked = true
	}
	if !hooked {
		return configError("middleware %s implements no pipeline hook", middlewareName(mw))
	}
	return nil
}
