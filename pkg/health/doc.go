// Package health serves liveness and readiness endpoints.
//
// Readiness runs every registered [CheckFunc] concurrently under one timeout
// and answers 503 if any fails. Both handlers reply with plain "OK" unless the
// caller asks for JSON (Accept: application/json or ?format=json).
package health
