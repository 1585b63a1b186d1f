// Package auth recomputes the request token from the caller identity and
// compares it against the presented one. Two formulas exist: a salted digest
// over account+login for regular callers, and a day-derived digest for the
// privileged login.
package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"
)

// adminTokenLayout is the date component of the privileged formula ("%Y%m%d").
const adminTokenLayout = "20060102"

// Authenticator validates request tokens. Safe for concurrent use: all state
// is set at construction and never mutated.
type Authenticator struct {
	userSalt   string
	adminSalt  string
	adminLogin string
	now        func() time.Time
}

type Option func(*Authenticator)

// WithClock overrides the time source of the privileged formula. Tests use
// this to pin the day the token is derived from.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

func New(userSalt, adminSalt, adminLogin string, opts ...Option) *Authenticator {
	a := &Authenticator{
		userSalt:   userSalt,
		adminSalt:  adminSalt,
		adminLogin: adminLogin,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsPrivileged reports whether the login selects the privileged token formula.
func (a *Authenticator) IsPrivileged(login string) bool {
	return login == a.adminLogin
}

// Check recomputes the expected token and compares it against the presented
// one. Any mismatch, including an empty token, yields false; it never errors.
func (a *Authenticator) Check(account, login, token string) bool {
	var expected string
	if a.IsPrivileged(login) {
		expected = digest(a.now().UTC().Format(adminTokenLayout) + a.adminSalt)
	} else {
		expected = digest(account + login + a.userSalt)
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

func digest(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
