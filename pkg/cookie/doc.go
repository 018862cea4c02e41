// Package cookie builds Set-Cookie directives and reads request cookies.
//
// A directive is the part of a Set-Cookie value that follows "name=": the
// value itself plus per-cookie flags such as HttpOnly. The Manager appends the
// site-wide attributes (path, domain, Secure, SameSite) when the header line is
// rendered, so handlers only decide the value and whether scripts may read it:
//
//	m := cookie.New(cookie.WithSecure(true))
//	line := m.Line("sid", cookie.Directive(token, true))
//	// sid=3f0c...; HttpOnly; Path=/; Secure
//
// Deleting a cookie uses the [Expired] directive, which sets the value to
// "deleted" with an expiry in 1970.
package cookie
