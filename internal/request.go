package internal

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/servant/pkg/codec"
	"github.com/dmitrymomot/servant/pkg/cookie"
)

// DefaultMaxBodyBytes bounds request bodies read into memory.
const DefaultMaxBodyBytes = 1 << 20

// ErrBodyTooLarge is returned when a request body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("servant: request body too large")

// Request is a fully read inbound request.
type Request struct {
	URL        *url.URL
	Header     http.Header // case-insensitive through Get
	Cookies    map[string]string
	Form       map[string]any // query string merged with a urlencoded or JSON body
	Method     string
	RemoteAddr string // host of the connection peer
	Body       []byte

	formErr error // body could not be parsed; reported only if the route needs form variables
}

// NewRequest builds a Request from raw parts. rawURL may be a path with a
// query string ("/click?counter=3").
func NewRequest(method, rawURL string, header http.Header, body []byte, remoteAddr string) (*Request, error) {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("servant: parse request url: %w", err)
	}
	if header == nil {
		header = make(http.Header)
	}
	r := &Request{
		Method:     strings.ToUpper(method),
		URL:        u,
		Header:     header,
		Body:       body,
		Cookies:    cookie.Parse(header),
		RemoteAddr: hostOnly(remoteAddr),
	}
	r.Form, r.formErr = parseForm(r)
	return r, nil
}

// ReadRequest reads r's body (up to maxBody bytes) and converts it.
func ReadRequest(r *http.Request, maxBody int64) (*Request, error) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBody+1))
		if err != nil {
			return nil, fmt.Errorf("servant: read request body: %w", err)
		}
		if int64(len(body)) > maxBody {
			return nil, ErrBodyTooLarge
		}
	}
	return NewRequest(r.Method, r.URL.RequestURI(), r.Header, body, r.RemoteAddr)
}

// Path returns the escaped request path.
func (r *Request) Path() string {
	return r.URL.EscapedPath()
}

// Query returns the first query string value for name.
func (r *Request) Query(name string) string {
	return r.URL.Query().Get(name)
}

// FormError returns the body parsing failure, if any.
func (r *Request) FormError() error {
	return r.formErr
}

func parseForm(r *Request) (map[string]any, error) {
	form := make(map[string]any)
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			form[key] = vals[0]
		}
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return form, nil
	}
	if len(r.Body) == 0 {
		return form, nil
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		// Unknown bodies are left to the handler.
		return form, nil
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		vals, err := url.ParseQuery(string(r.Body))
		if err != nil {
			return form, err
		}
		for key, v := range vals {
			if len(v) > 0 {
				form[key] = v[0]
			}
		}
	case "application/json":
		obj, err := codec.DecodeObject(r.Body)
		if err != nil {
			return form, err
		}
		for key, v := range obj {
			form[key] = v
		}
	}
	return form, nil
}

// ForwardedFor returns the first X-Forwarded-For hop, or "" without one.
// The header is client-controlled unless a trusted proxy sets it.
func (r *Request) ForwardedFor() string {
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return ""
	}
	first, _, _ := strings.Cut(fwd, ",")
	return strings.TrimSpace(first)
}

func hostOnly(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
