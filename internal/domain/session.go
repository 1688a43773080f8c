package domain

import "time"

// Session is a server-side login session persisted in the database and
// referenced from the browser by an opaque token inside a signed cookie.
type Session struct {
	Token     string
	UserID    int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
