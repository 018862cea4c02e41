package session

import (
	"errors"

	"github.com/dmitrymomot/servant/pkg/codec"
)

// EncodeData serializes session data for storage.
func EncodeData(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	return codec.Marshal(data)
}

// DecodeData restores session data from storage. An empty blob decodes to an
// empty map. Returns ErrCorrupt for anything that is not an encoded object.
func DecodeData(blob []byte) (map[string]any, error) {
	if len(blob) == 0 {
		return make(map[string]any), nil
	}
	data, err := codec.DecodeObject(blob)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	return data, nil
}
