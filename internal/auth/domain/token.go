package domain

import "time"

// TokenPair is what a successful authentication returns: the short-lived
// access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until access expiry
}

// RefreshToken models the persisted refresh token allow-list row. Only the
// SHA-256 fingerprint of the opaque token is stored; a row is invalidated by
// rotation, logout, or password change.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 of the opaque token
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
