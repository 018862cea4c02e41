package session

import "fmt"

// AuthStatus is the authentication progress of a session.
type AuthStatus int16

const (
	NotLoggedIn AuthStatus = iota
	OTPRequired
	Complete
)

var authStatusNames = [...]string{"none", "otp", "complete"}

// String returns the short name used in logs.
func (s AuthStatus) String() string {
	if s.Valid() {
		return authStatusNames[s]
	}
	return fmt.Sprintf("AuthStatus(%d)", int16(s))
}

// Valid reports whether s is a known status.
func (s AuthStatus) Valid() bool {
	return s >= NotLoggedIn && s <= Complete
}

// CanAdvance reports whether a session may move from s to next.
// Status only moves forward; staying in place is allowed.
func (s AuthStatus) CanAdvance(next AuthStatus) bool {
	return s.Valid() && next.Valid() && next >= s
}
