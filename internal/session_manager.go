package internal

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/servant/pkg/logger"
	"github.com/dmitrymomot/servant/pkg/session"
)

const defaultSessionCookieName = "sid"

// IPPolicy decides what happens when a session is used from an address other
// than the one it was created from.
type IPPolicy uint8

const (
	// IPMismatchAllow logs a security warning and keeps the session.
	IPMismatchAllow IPPolicy = iota
	// IPMismatchReject logs a security warning and treats the request as
	// anonymous. The stored session is left untouched.
	IPMismatchReject
)

// SessionManager loads the session named by the request cookie before the
// handler runs and persists it afterwards. Register it with ServerConfig.Use
// ahead of any middleware that reads the session.
type SessionManager struct {
	store      session.Store
	logger     *slog.Logger
	cookieName string
	checkIP    bool
	ipPolicy   IPPolicy
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store and options.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		logger:     logger.NewNope(),
		cookieName: defaultSessionCookieName,
		checkIP:    true,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionCheckIP enables or disables comparing the client address with
// the address the session was created from. Enabled by default.
func WithSessionCheckIP(enabled bool) SessionOption {
	return func(sm *SessionManager) {
		sm.checkIP = enabled
	}
}

// WithIPPolicy sets the reaction to an address mismatch.
func WithIPPolicy(p IPPolicy) SessionOption {
	return func(sm *SessionManager) {
		sm.ipPolicy = p
	}
}

// SetLogger sets the logger for session events. Called by ServerConfig.Use.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// CookieName returns the name of the session cookie.
func (sm *SessionManager) CookieName() string { return sm.cookieName }

// Store returns the session store.
func (sm *SessionManager) Store() session.Store { return sm.store }

func (sm *SessionManager) Name() string { return "session" }

// Start loads the session for the request cookie.
//
// An unknown token clears the cookie. Undecodable session data deletes the
// stored row and clears the cookie; the request continues without a session.
func (sm *SessionManager) Start(c *Context) error {
	token, ok := c.Cookie(sm.cookieName)
	if !ok || token == "" {
		return nil
	}

	rec, err := sm.store.Load(c, token)
	if errors.Is(err, session.ErrNotFound) {
		sm.logger.WarnContext(c, "SECURITY: unknown session token",
			slog.String("ip", c.IP()),
			slog.String("path", c.Request().Path()),
		)
		c.DeleteCookie(sm.cookieName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("servant: load session: %w", err)
	}

	s, err := session.FromRecord(rec)
	if err != nil {
		sm.logger.ErrorContext(c, "dropping corrupt session",
			slog.String("user_id", rec.UserID),
			slog.Any("error", &SessionCorruptionError{Err: err, Token: token}),
		)
		if err := sm.store.Delete(c, token); err != nil {
			sm.logger.ErrorContext(c, "delete corrupt session", slog.Any("error", err))
		}
		c.DeleteCookie(sm.cookieName)
		return nil
	}

	c.token = token
	if sm.checkIP && s.IP != "" && s.IP != c.IP() {
		sm.logger.WarnContext(c, "SECURITY: session used from another address",
			slog.String("user_id", s.UserID),
			slog.String("session_ip", s.IP),
			slog.String("ip", c.IP()),
		)
		if sm.ipPolicy == IPMismatchReject {
			c.token = ""
			return nil
		}
	}
	c.session = s
	return nil
}

// Complete persists the session: deleted sessions are removed, new ones are
// inserted (replacing the request's previous session, if any) and existing
// ones are updated. New sessions set the session cookie.
func (sm *SessionManager) Complete(c *Context) error {
	s := c.session

	if s != nil && s.IsNew() {
		rec, err := s.Record()
		if err != nil {
			return err
		}
		if c.dropToken {
			err = sm.rotate(c, rec)
		} else {
			err = sm.store.Insert(c, rec)
		}
		if err != nil {
			return fmt.Errorf("servant: save session: %w", err)
		}
		s.ClearNew()
		c.token, c.dropToken = s.ID, false
		c.SetCookie(sm.cookieName, s.ID, true)
		return nil
	}

	if c.dropToken {
		c.dropToken = false
		if err := sm.store.Delete(c, c.token); err != nil {
			return fmt.Errorf("servant: delete session: %w", err)
		}
		return nil
	}

	if s == nil {
		return nil
	}
	data, err := session.EncodeData(s.Data)
	if err != nil {
		return err
	}
	n, err := sm.store.Update(c, s.ID, s.UserID, s.AuthStatus, data)
	if err != nil {
		return fmt.Errorf("servant: update session: %w", err)
	}
	if n == 0 {
		return errors.Join(session.ErrIdentityChanged, fmt.Errorf("user %s", s.UserID))
	}
	return nil
}

// rotate replaces the request's previous session with rec.
func (sm *SessionManager) rotate(c *Context, rec *session.Record) error {
	if r, ok := sm.store.(session.Rotator); ok {
		return r.Rotate(c, c.token, rec)
	}
	if err := sm.store.Delete(c, c.token); err != nil {
		return err
	}
	return sm.store.Insert(c, rec)
}
