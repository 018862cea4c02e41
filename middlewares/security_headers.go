package middlewares

import (
	"maps"

	"github.com/dmitrymomot/servant/internal"
)

// SecurityHeadersConfig lists the security headers to set. Empty values are skipped.
type SecurityHeadersConfig struct {
	CustomHeaders             map[string]string
	ContentTypeOptions        string
	FrameOptions              string
	XSSProtection             string
	StrictTransportSecurity   string
	ContentSecurityPolicy     string
	ReferrerPolicy            string
	PermissionsPolicy         string
	CrossOriginOpenerPolicy   string
	CrossOriginResourcePolicy string

	// IsDevelopment drops HSTS so plain HTTP keeps working locally.
	IsDevelopment bool
}

// Predefined configurations.
var (
	// StrictSecurity blocks framing, inline content and cross-origin reads.
	StrictSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "DENY",
		XSSProtection:             "1; mode=block",
		StrictTransportSecurity:   "max-age=63072000; includeSubDomains; preload",
		ContentSecurityPolicy:     "default-src 'none'; script-src 'self'; style-src 'self'; img-src 'self'; font-src 'self'; connect-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		ReferrerPolicy:            "no-referrer",
		PermissionsPolicy:         "accelerometer=(), camera=(), geolocation=(), gyroscope=(), magnetometer=(), microphone=(), payment=(), usb=()",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
	}

	// BalancedSecurity suits most applications.
	BalancedSecurity = SecurityHeadersConfig{
		ContentTypeOptions:        "nosniff",
		FrameOptions:              "SAMEORIGIN",
		XSSProtection:             "1; mode=block",
		StrictTransportSecurity:   "max-age=31536000; includeSubDomains",
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' data:",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		PermissionsPolicy:         "geolocation=(), microphone=(), camera=()",
		CrossOriginOpenerPolicy:   "same-origin-allow-popups",
		CrossOriginResourcePolicy: "cross-origin",
	}

	// DevelopmentSecurity sets the headers that never get in the way locally.
	DevelopmentSecurity = SecurityHeadersConfig{
		ContentTypeOptions: "nosniff",
		XSSProtection:      "1; mode=block",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		IsDevelopment:      true,
	}
)

// SecurityHeadersMiddleware sets security headers on every response,
// including error responses.
type SecurityHeadersMiddleware struct {
	headers map[string]string
}

// SecurityHeaders returns the middleware with BalancedSecurity.
func SecurityHeaders() *SecurityHeadersMiddleware {
	return SecurityHeadersWithConfig(BalancedSecurity)
}

// SecurityHeadersWithConfig returns the middleware with cfg.
func SecurityHeadersWithConfig(cfg SecurityHeadersConfig) *SecurityHeadersMiddleware {
	h := map[string]string{
		"X-Content-Type-Options":       cfg.ContentTypeOptions,
		"X-Frame-Options":              cfg.FrameOptions,
		"X-XSS-Protection":             cfg.XSSProtection,
		"Content-Security-Policy":      cfg.ContentSecurityPolicy,
		"Referrer-Policy":              cfg.ReferrerPolicy,
		"Permissions-Policy":           cfg.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   cfg.CrossOriginOpenerPolicy,
		"Cross-Origin-Resource-Policy": cfg.CrossOriginResourcePolicy,
	}
	if !cfg.IsDevelopment {
		h["Strict-Transport-Security"] = cfg.StrictTransportSecurity
	}
	maps.Copy(h, cfg.CustomHeaders)
	maps.DeleteFunc(h, func(_, v string) bool { return v == "" })
	return &SecurityHeadersMiddleware{headers: h}
}

func (m *SecurityHeadersMiddleware) Name() string { return "security_headers" }

// Complete runs after failures too, so error pages carry the headers.
func (m *SecurityHeadersMiddleware) Complete(c *internal.Context) error {
	for k, v := range m.headers {
		c.SetHeader(k, v)
	}
	return nil
}
