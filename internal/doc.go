// Package internal provides the core types and implementation for servant.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/servant" instead, which re-exports the public API.
//
// # Request Flow
//
// A Dispatcher processes every request in fixed stages:
//
//	routing -> starting -> handling -> completing -> formatting -> done
//
// Routing resolves the path against the RouteTable; the first registered
// pattern that matches wins. Start hooks run in middleware registration
// order and may stop the request by returning an error. The handler runs
// only when a route matched and no hook failed. Complete hooks run for every
// request in the same order, even after failures, so the session is always
// persisted and access is always logged. The Formatter then turns the body
// into bytes, status and caching headers.
//
// # Handlers
//
// Handlers receive the request Context and their named arguments:
//
//	cfg.AddRoute("/click", func(c *internal.Context, args internal.Args) (any, error) {
//	    n := internal.ArgOr(args, "counter", 0)
//	    return map[string]any{"counter": n + 1}, nil
//	}, internal.Params("counter"), internal.Permissions("PUBLIC"))
//
// URL variables come from "{name}" pattern segments. Every other declared
// parameter is a form variable read from the query string or the body; a
// missing one is answered with 400.
//
// The returned value becomes the response body: nil (204), a structured
// value encoded as JSON, a *static.CachedFile, or []byte with an explicit
// Content-Type.
//
// # Middleware
//
// A middleware is any value implementing one or more of Starter, Completer
// and RouteRegistrar. RouteRegistrar sees every route at registration time
// and can reject it, which is how permission requirements are enforced
// before the server starts.
//
// # Context as context.Context
//
// Context delegates Deadline, Done, Err and Value to the inbound request
// context, so it can be passed to stores and clients directly:
//
//	rec, err := store.Load(c, token)
//
// # Errors
//
// Handler and middleware errors are translated into responses by status:
// HTTPError carries an explicit code and an optional client-visible detail,
// the typed errors in this package map to fixed codes, and anything else is
// a 500 with a generic body. Configuration mistakes wrap ErrConfiguration
// and are returned from registration instead.
package internal
