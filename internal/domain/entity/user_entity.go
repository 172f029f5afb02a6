package entity

import (
	"time"
)

// User is the aggregate root for the identity domain. A single row may
// accumulate several identity keys over time (password, Google, wallet);
// the nullable keys are pointers so that absence survives the round trip
// to the unique-indexed columns.
type User struct {
	ID            string
	Email         string
	Username      *string
	FirstName     *string
	LastName      *string
	PasswordHash  *string
	GoogleID      *string
	WalletAddress *string
	IsActive      bool
	IsVerified    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the user can authenticate via the password
// path. OAuth-only and wallet-only accounts have no hash at all.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// FullName derives a display name: first+last, else first, else last,
// else username, else email.
func (u *User) FullName() string {
	first := strPtr(u.FirstName)
	last := strPtr(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	if un := strPtr(u.Username); un != "" {
		return un
	}
	return u.Email
}

func strPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
