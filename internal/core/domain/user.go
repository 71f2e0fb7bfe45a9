package domain

import "time"

// User models a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller, as carried inside a session token.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username}
}
