package static

import (
	"path"
	"strings"
)

var mimeTypes = map[string]string{
	".css":  "text/css",
	".gif":  "image/gif",
	".html": "text/html",
	".ico":  "image/x-icon",
	".js":   "text/javascript",
	".json": "application/json",
	".map":  "application/json",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".woff": "application/font-woff",
}

// MimeType returns the mime type registered for the extension of name.
func MimeType(name string) (string, bool) {
	mt, ok := mimeTypes[strings.ToLower(path.Ext(name))]
	return mt, ok
}
