package domain

import "time"

// SavedCredential is a remembered username/password pair. The password is
// sealed with the username as associated data.
type SavedCredential struct {
	Username          string
	PasswordEncrypted []byte
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastLoginAt       *time.Time
}
