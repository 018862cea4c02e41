// Package servant provides a small request-processing core for JSON APIs
// and server-rendered sites: a route table with declared variables, a
// middleware pipeline with start and complete hooks, server-side sessions
// and a response formatter with conditional-request support.
//
// # Quick Start
//
// Collect routes and middleware in a ServerConfig, build the dispatcher and
// serve it:
//
//	cfg := servant.NewServerConfig(servant.WithLogger(log))
//	cfg.Use(servant.NewSessionManager(store))
//	cfg.Use(middlewares.Permissions())
//	cfg.AddRoute("/click", click,
//	    servant.Params("counter"),
//	    servant.Permissions(middlewares.PermissionPublic),
//	)
//
//	d, err := cfg.Build()
//	if err != nil {
//	    log.Error("build", "error", err)
//	    os.Exit(1)
//	}
//
//	app := servant.New(d, servant.WithHealthChecks())
//	if err := app.Run(":8080", servant.Logger(log)); err != nil {
//	    log.Error("server", "error", err)
//	}
//
// # Handlers
//
// A handler receives the request context and the declared variables, and
// returns a body. Maps, slices and structs are encoded as JSON, byte slices
// are sent as they are under the Content-Type the handler set, and nil
// means 204 No Content:
//
//	func click(c *servant.Context, args servant.Args) (any, error) {
//	    n, ok := servant.Arg[int](args, "counter")
//	    if !ok {
//	        return nil, servant.ErrBadRequest(servant.WithDetail("counter must be a number"))
//	    }
//	    return map[string]any{"counter": n + 1}, nil
//	}
//
// # Middleware
//
// Middleware is any value with a Start hook, a Complete hook, a
// RegisterRoute hook, or a combination. Start hooks run in registration
// order before the handler; the first error stops the request. Complete
// hooks run for every request, after failures too, and see the final
// status.
//
//	cfg.Use(servant.CompleteFunc(func(c *servant.Context) error {
//	    c.SetHeader("X-Served-By", "servant")
//	    return nil
//	}))
//
// # Errors
//
// Errors decide the response status through StatusOf: HTTPError carries an
// explicit status and optional JSON detail, unknown errors and panics
// become 500 responses with a generic body and are logged with the request
// number.
package servant
