// Package logger builds the slog loggers used across the server.
//
// [New] creates a JSON (or text) logger from [Config]. When a Sentry DSN is
// set, records are fanned out to Sentry as well: errors become issues and,
// by default, warnings are kept as searchable logs.
//
// Context extractors add request-scoped attributes on every call:
//
//	log := logger.New(cfg,
//		middlewares.RequestIDExtractor(),
//		servant.RequestNumberExtractor(),
//	)
//	log.InfoContext(c, "request handled")
//	// {"level":"INFO","msg":"request handled","request_id":"01J...","req":42}
//
// [NewNope] returns a logger that discards everything and is the default
// wherever a logger is optional.
package logger
