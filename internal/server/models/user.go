package models

import "time"

// Account is a stored identity. PasswordDigest never leaves the server:
// handlers serialize PublicProfile instead.
type Account struct {
	ID             int64
	Username       string
	Email          string
	PasswordDigest string `json:"-"`
	CreatedAt      time.Time
}

// Public returns the serializable view of the account.
func (a *Account) Public() PublicProfile {
	return PublicProfile{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

// PublicProfile is an account without credentials.
type PublicProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
