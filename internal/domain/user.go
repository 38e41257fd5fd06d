package domain

import "time"

// User is an account known to the credential store. Account handles are
// unique across all users. FirstLogin starts true for accounts created
// through the admin flow and flips to false exactly once, when the owner
// completes a compliant password change.
type User struct {
	ID           int64
	Role         Role
	Name         string
	Account      string
	PasswordHash string
	FirstLogin   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
