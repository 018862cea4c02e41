package internal

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/dmitrymomot/servant/pkg/static"
)

// ErrConfiguration marks startup wiring mistakes: bad patterns, duplicate
// routes, unknown static keys. They abort startup and are never recovered.
var ErrConfiguration = errors.New("servant: configuration error")

// ConfigurationError describes a wiring mistake.
// errors.Is(err, ErrConfiguration) holds for every ConfigurationError.
type ConfigurationError struct {
	Err    error // underlying cause, may be nil
	Reason string
}

func configError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return "servant: " + e.Reason + ": " + e.Err.Error()
	}
	return "servant: " + e.Reason
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrConfiguration, e.Err}
	}
	return []error{ErrConfiguration}
}

// StatusCoder is implemented by errors that choose their HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is an explicit status chosen by a handler or middleware.
// A non-empty Detail is sent to the client as {"detail": ...}.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Detail is the optional client-visible body.
	Detail any

	// Message is used in logs; it defaults to the status text.
	Message string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Code)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) DetailBody() any {
	if e.Detail == nil {
		return nil
	}
	return map[string]any{"detail": e.Detail}
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError with the given status code.
func NewHTTPError(code int, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithDetail sets the client-visible detail.
func WithDetail(detail any) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

// WithMessage sets the log message.
func WithMessage(msg string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Message = msg
	}
}

// WithError attaches the underlying cause.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, opts...)
}

func ErrUnauthorized(opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, opts...)
}

func ErrForbidden(opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, opts...)
}

func ErrNotFound(opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, opts...)
}

func ErrConflict(opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, opts...)
}

func ErrInternal(opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, opts...)
}

// NotFoundError reports that no route or file matches the request.
type NotFoundError struct {
	Err  error
	Path string
}

func (e *NotFoundError) Error() string   { return "servant: not found: " + e.Path }
func (e *NotFoundError) Unwrap() error   { return e.Err }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// MissingParameterError reports a declared form variable absent from the request.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string   { return "servant: missing parameter " + e.Name }
func (e *MissingParameterError) StatusCode() int { return http.StatusBadRequest }
func (e *MissingParameterError) DetailBody() any {
	return map[string]any{"detail": "missing parameter: " + e.Name}
}

// PermissionError reports a session lacking the permissions a route requires.
type PermissionError struct {
	Required []string
}

func (e *PermissionError) Error() string {
	return "servant: permission denied, requires one of " + strings.Join(e.Required, ",")
}
func (e *PermissionError) StatusCode() int { return http.StatusForbidden }

// ContentTypeError reports a handler result the formatter cannot encode.
// It is a programming error.
type ContentTypeError struct {
	Reason string
	Type   string
}

func newContentTypeError(body any, reason string) *ContentTypeError {
	return &ContentTypeError{Type: reflect.TypeOf(body).String(), Reason: reason}
}

func (e *ContentTypeError) Error() string {
	return "servant: cannot format body of type " + e.Type + ": " + e.Reason
}
func (e *ContentTypeError) StatusCode() int { return http.StatusInternalServerError }

// SessionCorruptionError reports stored session data that could not be
// decoded. The session row is deleted and the request continues without it.
type SessionCorruptionError struct {
	Err   error
	Token string
}

func (e *SessionCorruptionError) Error() string {
	return "servant: corrupt session data: " + e.Err.Error()
}
func (e *SessionCorruptionError) Unwrap() error   { return e.Err }
func (e *SessionCorruptionError) StatusCode() int { return http.StatusInternalServerError }

// PanicError wraps a value recovered from a panicking handler or hook.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string   { return fmt.Sprintf("servant: panic: %v", e.Value) }
func (e *PanicError) StatusCode() int { return http.StatusInternalServerError }

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// StatusOf maps err to the HTTP status it produces.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 100 && code <= 999 {
			return code
		}
	}
	if errors.Is(err, static.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// internalErrorBody is the only body clients see for unexpected failures.
var internalErrorBody = map[string]any{"error": "internal server error"}

// errorBody returns the client-visible body for err, or nil for none.
func errorBody(err error, status int) any {
	var d interface{ DetailBody() any }
	if errors.As(err, &d) {
		if body := d.DetailBody(); body != nil {
			return body
		}
	}
	if status == http.StatusInternalServerError {
		var h *HTTPError
		if !errors.As(err, &h) {
			return internalErrorBody
		}
	}
	return nil
}

// expected reports whether err is a normal request outcome rather than a
// server fault worth an error log.
func expected(err error) bool {
	return StatusOf(err) < http.StatusInternalServerError
}
