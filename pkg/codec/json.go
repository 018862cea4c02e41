package codec

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Errors.
var (
	ErrEncode = errors.New("codec: failed to encode value")
	ErrDecode = errors.New("codec: failed to decode value")
)

// Marshal encodes v into its canonical compact form.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	// Encoder terminates every value with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Decode parses data into a generic value. Objects become map[string]any,
// arrays []any, numbers json.Number and tagged date objects Date.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if dec.More() {
		return nil, errors.Join(ErrDecode, errors.New("trailing data after JSON value"))
	}
	return restoreDates(v), nil
}

// DecodeObject parses data that must hold a JSON object.
func DecodeObject(data []byte) (map[string]any, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Join(ErrDecode, errors.New("JSON value is not an object"))
	}
	return obj, nil
}

// Unmarshal decodes data into a typed destination. Date fields decode
// through Date.UnmarshalJSON.
func Unmarshal(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// restoreDates walks a decoded value and replaces tagged date objects.
func restoreDates(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if d, ok := dateFromObject(t); ok {
			return d
		}
		for k, item := range t {
			t[k] = restoreDates(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = restoreDates(item)
		}
		return t
	default:
		return v
	}
}
