package internal

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/dmitrymomot/servant/pkg/codec"
	"github.com/dmitrymomot/servant/pkg/static"
)

// Formatter turns a Response body into status, headers and bytes.
type Formatter struct {
	version string
}

// NewFormatter creates a formatter. A version other than "" or "dev" enables
// release caching for static files: etags, long lifetimes and 304 replies.
func NewFormatter(version string) *Formatter {
	return &Formatter{version: version}
}

// Release reports whether release caching is enabled.
func (f *Formatter) Release() bool {
	return f.version != "" && f.version != "dev"
}

// Format finalizes resp for req. On error resp is left without bytes and
// the caller decides the replacement response.
//
// After a successful call Cache-Control is set, and Content-Length is set
// exactly when there are body bytes.
func (f *Formatter) Format(req *Request, resp *Response) error {
	resp.bytes = nil
	resp.Header.Del("Content-Length")

	switch body := resp.Body.(type) {
	case nil:
		if resp.Status == 0 {
			resp.Status = http.StatusNoContent
		}
		setDefault(resp.Header, "Cache-Control", CacheControlNever)
		return nil

	case *static.CachedFile:
		if body == nil {
			return newContentTypeError(resp.Body, "nil file")
		}
		return f.formatFile(req, resp, body)

	case []byte:
		if resp.Header.Get("Content-Type") == "" {
			return newContentTypeError(body, "raw bytes require a Content-Type header")
		}
		setDefault(resp.Header, "Cache-Control", CacheControlNever)
		f.setBytes(resp, body)
		return nil
	}

	if !structured(resp.Body) {
		return newContentTypeError(resp.Body, "unsupported body type")
	}
	data, err := codec.Marshal(resp.Body)
	if err != nil {
		return &ContentTypeError{Type: reflect.TypeOf(resp.Body).String(), Reason: err.Error()}
	}
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set("Cache-Control", CacheControlNever)
	f.setBytes(resp, data)
	return nil
}

func (f *Formatter) formatFile(req *Request, resp *Response, file *static.CachedFile) error {
	if !f.Release() {
		// Never cache during development so edits show up on reload.
		resp.Header.Set("Cache-Control", CacheControlNever)
	} else {
		resp.Header.Set("ETag", file.ETag)
		if file.IsIndex() {
			resp.Header.Set("Cache-Control", CacheControlHour)
		} else {
			resp.Header.Set("Cache-Control", CacheControlForever)
		}
		if req != nil && file.ETag != "" && req.Header.Get("If-None-Match") == file.ETag {
			resp.Status = http.StatusNotModified
			return nil
		}
	}

	resp.Header.Set("Content-Type", file.MimeType)
	if file.Compressed {
		resp.Header.Set("Content-Encoding", "gzip")
	}
	f.setBytes(resp, file.Content)
	return nil
}

func (f *Formatter) setBytes(resp *Response, data []byte) {
	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	if len(data) == 0 {
		return
	}
	resp.bytes = data
	resp.Header.Set("Content-Length", strconv.Itoa(len(data)))
}

// structured reports whether v encodes as a JSON document: maps, slices,
// arrays and structs (directly or behind a pointer). Strings and other
// scalars are rejected so handlers cannot send ambiguous bodies.
func structured(v any) bool {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	}
	return false
}

func setDefault(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}
