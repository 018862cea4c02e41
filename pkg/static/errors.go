package static

import "errors"

var (
	ErrInvalidRoot     = errors.New("static: root must be an absolute path to an existing directory")
	ErrDuplicateKey    = errors.New("static: key already registered")
	ErrUnknownKey      = errors.New("static: key is not registered")
	ErrNotFound        = errors.New("static: file not found")
	ErrUnknownMimeType = errors.New("static: no mime type for extension")
	ErrSealed          = errors.New("static: registry is sealed")
)
