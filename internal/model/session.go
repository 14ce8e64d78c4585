package model

import "time"

// Session is the server-side record behind a session cookie.
//
// The lifetime is absolute: ExpiresAt is fixed at creation and never extended.
type Session struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// User returns the public user projection stored in the session.
func (s *Session) User() UserView {
	return UserView{ID: s.UserID, Username: s.Username, Email: s.Email}
}
