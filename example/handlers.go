package main

import (
	"github.com/dmitrymomot/servant"
	"github.com/dmitrymomot/servant/middlewares"
	"github.com/dmitrymomot/servant/pkg/session"
)

// sessionStore is what the demo needs from a store: sessions plus user lookup.
type sessionStore interface {
	session.Store
	session.UserStore
}

const visitsKey = "visits"

func registerRoutes(cfg *servant.ServerConfig, users session.UserStore, staticDir string) error {
	public := servant.Permissions(middlewares.PermissionPublic)
	user := servant.Permissions(middlewares.PermissionUser)

	routes := []struct {
		pattern string
		handler servant.HandlerFunc
		opts    []servant.RouteOption
	}{
		{"/", index, []servant.RouteOption{public}},
		{"/click", click, []servant.RouteOption{public, servant.Params("counter")}},
		{"/login", login(users), []servant.RouteOption{public, servant.Params("login")}},
		{"/me", me, []servant.RouteOption{user}},
		{"/logout", logout, []servant.RouteOption{user}},
		{"/reports", reports, []servant.RouteOption{servant.Permissions("reports")}},
	}
	for _, r := range routes {
		if err := cfg.AddRoute(r.pattern, r.handler, r.opts...); err != nil {
			return err
		}
	}
	return cfg.Static("/static", "site", staticDir, public)
}

func index(c *servant.Context, _ servant.Args) (any, error) {
	return c.Static("site", "index.html")
}

func click(_ *servant.Context, args servant.Args) (any, error) {
	n, ok := servant.Arg[int](args, "counter")
	if !ok {
		return nil, servant.ErrBadRequest(servant.WithDetail("counter must be a number"))
	}
	return map[string]any{"counter": n + 1}, nil
}

// login starts a session without a password check; it is a demo.
func login(users session.UserStore) servant.HandlerFunc {
	return func(c *servant.Context, args servant.Args) (any, error) {
		u, err := users.UserByLogin(c, args.String("login"))
		if err != nil {
			return nil, servant.ErrUnauthorized(servant.WithDetail("unknown login"))
		}
		c.NewSession(u.ID, u.Login, u.Name, session.Complete)
		return map[string]any{"user": u.Login}, nil
	}
}

func me(c *servant.Context, _ servant.Args) (any, error) {
	s := c.Session()
	visits := servant.SessionValueOr(s, visitsKey, 0) + 1
	s.Set(visitsKey, visits)
	return map[string]any{
		"login":       s.Login,
		"name":        s.DisplayName,
		"permissions": s.Permissions,
		"visits":      visits,
		"request_id":  middlewares.GetRequestID(c),
	}, nil
}

func logout(c *servant.Context, _ servant.Args) (any, error) {
	c.DeleteSession()
	return nil, nil
}

func reports(*servant.Context, servant.Args) (any, error) {
	return []map[string]any{
		{"quarter": "Q1", "revenue": 1200},
		{"quarter": "Q2", "revenue": 1850},
	}, nil
}
