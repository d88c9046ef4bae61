package domain

import (
	"strings"
	"time"
)

// Account is a registered marketplace user.
type Account struct {
	ID                    int64
	Username              string
	Email                 string
	PasswordHash          string
	Active                bool
	Staff                 bool
	Superuser             bool
	EmailVerified         bool
	EmailVerificationHash string
	DateJoined            time.Time
	LastLogin             *time.Time
}

// AccountView is the public projection of an Account. It never carries the
// password hash or the email verification hash.
type AccountView struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Public returns the projection safe to hand out to clients.
func (a *Account) Public() AccountView {
	return AccountView{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		EmailVerified: a.EmailVerified,
	}
}

// NormalizeEmail lower-cases the domain part and trims surrounding whitespace.
// The local part is kept as typed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
