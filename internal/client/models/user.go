// Package models defines the account shapes the client receives from the
// server and keeps in its session.
package models

import (
	"fmt"
	"time"
)

// User is the identity returned on login and kept with the session token.
// It is for display only; the server never trusts it.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Label is the short form shown in the prompt.
func (u *User) Label() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Profile is an account as listed by the server.
type Profile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Profile) String() string {
	return fmt.Sprintf("#%d %s <%s> since %s", p.ID, p.Username, p.Email, p.CreatedAt.Local().Format(time.DateOnly))
}
