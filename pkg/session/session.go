package session

import (
	"errors"
	"slices"
	"time"

	"github.com/dmitrymomot/servant/pkg/codec"
)

// Session is the per-request view of a stored session joined with its user.
type Session struct {
	LoginTime    time.Time
	LastActiveAt time.Time

	Data        map[string]any // Opaque application data, persisted as a blob
	ID          string         // Token carried by the session cookie
	UserID      string
	Login       string
	DisplayName string
	IP          string // Address recorded at login
	Permissions []string
	AuthStatus  AuthStatus

	isNew bool
}

// New creates a session that has not been persisted yet.
func New(token, userID, login, displayName string, status AuthStatus) *Session {
	now := time.Now()
	return &Session{
		ID:           token,
		UserID:       userID,
		Login:        login,
		DisplayName:  displayName,
		AuthStatus:   status,
		Data:         make(map[string]any),
		LoginTime:    now,
		LastActiveAt: now,
		isNew:        true,
	}
}

// FromRecord restores a session from a store record.
// Returns ErrCorrupt if the data blob cannot be decoded.
func FromRecord(rec *Record) (*Session, error) {
	data, err := DecodeData(rec.Data)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:           rec.Token,
		UserID:       rec.UserID,
		Login:        rec.Login,
		DisplayName:  rec.Name,
		AuthStatus:   rec.AuthStatus,
		IP:           rec.IP,
		Permissions:  rec.Permissions,
		Data:         data,
		LoginTime:    rec.LoginTime,
		LastActiveAt: rec.LastActiveAt,
	}, nil
}

// Record converts the session into a store record, encoding its data.
func (s *Session) Record() (*Record, error) {
	if s.ID == "" || s.UserID == "" {
		return nil, ErrInvalidSession
	}
	data, err := EncodeData(s.Data)
	if err != nil {
		return nil, err
	}
	return &Record{
		Token:        s.ID,
		UserID:       s.UserID,
		Login:        s.Login,
		Name:         s.DisplayName,
		AuthStatus:   s.AuthStatus,
		IP:           s.IP,
		Permissions:  s.Permissions,
		Data:         data,
		LoginTime:    s.LoginTime,
		LastActiveAt: s.LastActiveAt,
	}, nil
}

// IsNew returns true if the session was created during this request.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() {
	s.isNew = false
}

// Authenticated reports whether the login completed, including any second factor.
func (s *Session) Authenticated() bool {
	return s != nil && s.AuthStatus == Complete
}

// Advance moves the session to the given auth status.
func (s *Session) Advance(to AuthStatus) error {
	if !s.AuthStatus.CanAdvance(to) {
		return errors.Join(ErrInvalidTransition, errors.New(s.AuthStatus.String()+" -> "+to.String()))
	}
	s.AuthStatus = to
	return nil
}

// HasPermission reports whether the user holds the permission token.
func (s *Session) HasPermission(perm string) bool {
	return s != nil && slices.Contains(s.Permissions, perm)
}

// HasAnyPermission reports whether the user holds at least one of perms.
func (s *Session) HasAnyPermission(perms []string) bool {
	if s == nil {
		return false
	}
	for _, p := range perms {
		if slices.Contains(s.Permissions, p) {
			return true
		}
	}
	return false
}

// Set stores a value in the session data.
func (s *Session) Set(key string, val any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = val
}

// Get retrieves a value from the session data.
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

// Delete removes a value from the session data.
func (s *Session) Delete(key string) {
	if s.Data != nil {
		delete(s.Data, key)
	}
}

// Value is a typed helper to retrieve session values with type safety.
// Stored numbers come back as json.Number after a round trip through the
// store; they are converted to numeric T, as are strings and bools.
// Returns an error if the key doesn't exist or the value cannot be converted.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := codec.As[T](val)
	if !ok {
		return zero, errors.New("session: type mismatch for key: " + key)
	}

	return typed, nil
}

// ValueOr is a typed helper that returns a default value if the key
// doesn't exist or type assertion fails.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
