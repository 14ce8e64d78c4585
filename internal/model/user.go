// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account.
//
// Email is stored trimmed and lower-cased, so it can be compared directly.
// PasswordHash is a bcrypt hash and is never serialized.
type User struct {
	ID           string    `json:"id"       db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email"    db:"email"`
	PasswordHash string    `json:"-"        db:"password_hash"`
	CreatedAt    time.Time `json:"-"        db:"created_at"`
}

// UserView is the public shape of a user returned by signup, signin and /api/me.
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// View returns the public projection of u.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email}
}
