package domain

import "time"

// Role is the authorization level attached to a user. Stored as text so new
// roles can be added by migration without a schema change.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string // unique
	Username     string // unique
	Name         string
	Avatar       string
	PasswordHash string // argon2id encoded, never serialized outward
	Role         Role

	// IsActive is false while a signup OTP is outstanding. Inactive users
	// cannot authenticate.
	IsActive bool

	TwoFactorEnabled bool
	TwoFactorSecret  *string // TOTP secret (nullable, base32), cleared on disable
	BackupCodes      *string // space-joined code fingerprints, cleared on disable

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Identity is the minimal per-request identity attached to the request
// context by the authentication middleware and consumed by downstream
// handlers (albums, photos, collages live elsewhere in the app).
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}
