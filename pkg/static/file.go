package static

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
)

// CachedFile is an immutable in-memory copy of a served file.
type CachedFile struct {
	RelPath    string
	MimeType   string
	ETag       string
	Content    []byte
	Compressed bool
}

func newCachedFile(rel, mimeType string, content []byte) *CachedFile {
	sum := sha256.Sum256(content)
	return &CachedFile{
		RelPath:  rel,
		MimeType: mimeType,
		ETag:     `"` + hex.EncodeToString(sum[:16]) + `"`,
		Content:  content,
	}
}

// IsIndex reports whether the file is an index document. Index documents are
// the only unversioned assets and get a short cache lifetime.
func (f *CachedFile) IsIndex() bool {
	return path.Base(f.RelPath) == "index.html"
}

// Size returns the content length in bytes.
func (f *CachedFile) Size() int {
	return len(f.Content)
}
