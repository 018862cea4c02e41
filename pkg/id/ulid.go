// Package id generates request identifiers.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"strings"
	"time"
)

// Crockford's Base32 alphabet (excludes I, L, O, U).
const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ULIDLen is the length of an encoded ULID.
const ULIDLen = 26

// ErrInvalidULID is returned by ULIDTime for malformed input.
var ErrInvalidULID = errors.New("id: invalid ULID")

// NewULID returns a ULID: 48 bits of millisecond time followed by 80 random
// bits, encoded as 26 Crockford Base32 characters. ULIDs sort by creation time.
func NewULID() string {
	return encodeULID(uint64(time.Now().UnixMilli()))
}

func encodeULID(ms uint64) string {
	var raw [16]byte
	raw[0] = byte(ms >> 40)
	raw[1] = byte(ms >> 32)
	binary.BigEndian.PutUint32(raw[2:6], uint32(ms))
	if _, err := rand.Read(raw[6:]); err != nil {
		// Degraded but still unique enough for log correlation.
		binary.BigEndian.PutUint64(raw[8:], uint64(time.Now().UnixNano()))
	}

	hi := binary.BigEndian.Uint64(raw[:8])
	lo := binary.BigEndian.Uint64(raw[8:])

	// 26 chars * 5 bits = 130 bits; the first char carries the top 3 bits.
	var out [ULIDLen]byte
	for i := ULIDLen - 1; i >= 0; i-- {
		out[i] = crockfordBase32[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// ULIDTime returns the creation time encoded in a ULID.
func ULIDTime(s string) (time.Time, error) {
	if len(s) != ULIDLen {
		return time.Time{}, ErrInvalidULID
	}
	var ms uint64
	for i := range 10 {
		v := strings.IndexByte(crockfordBase32, s[i])
		if v < 0 {
			return time.Time{}, ErrInvalidULID
		}
		ms = ms<<5 | uint64(v)
	}
	if ms >= 1<<48 {
		return time.Time{}, ErrInvalidULID
	}
	return time.UnixMilli(int64(ms)), nil
}
