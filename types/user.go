package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the internal unique identifier of the user.
	ID int `json:"-" db:"id"`

	// PublicID is an opaque, externally stable identifier generated
	// at creation time. It is immutable.
	PublicID string `json:"public_id" db:"public_id"`

	// Username is the unique login name chosen by the user.
	// It is normalized to lowercase and immutable after creation,
	// and serves as the identity claim carried in access tokens.
	Username string `json:"username" db:"username"`

	// Admin indicates whether the user may perform administrative
	// operations such as listing, promoting, or deleting other users.
	Admin bool `json:"admin" db:"admin"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
