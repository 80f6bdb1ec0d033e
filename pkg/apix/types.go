package apix

import "time"

// UserResponse is the outward representation of a user. The password hash and
// two-factor secret material never appear here.
type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	Name             string     `json:"name,omitempty"`
	Avatar           string     `json:"avatar,omitempty"`
	Role             string     `json:"role"`
	IsActive         bool       `json:"is_active"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// PublicUserResponse is the reduced view returned to anonymous callers.
type PublicUserResponse struct {
	Username  string    `json:"username"`
	Name      string    `json:"name,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned whenever authentication succeeds and tokens are
// issued: register, login, signup verification, OTP step-up login.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"` // always "Bearer"
	ExpiresIn    int          `json:"expires_in"` // access token lifetime, seconds
	User         UserResponse `json:"user"`
}

// SignupPendingResponse acknowledges a signup request. No tokens are issued
// until the signup OTP is verified.
type SignupPendingResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// LoginOTPResponse is the envelope for the step-up login endpoint. When the
// account has two-factor enabled and no code was supplied, Success is false
// and RequiresOTP is true with HTTP 200 - a protocol signal, not an error.
type LoginOTPResponse struct {
	Success     bool          `json:"success"`
	RequiresOTP bool          `json:"requires_otp,omitempty"`
	Message     string        `json:"message,omitempty"`
	Auth        *AuthResponse `json:"auth,omitempty"`
}

// TwoFactorEnableResponse returns the provisioned secret material once, at
// enable time. Backup codes are never retrievable again.
type TwoFactorEnableResponse struct {
	Enabled     bool     `json:"enabled"`
	Secret      string   `json:"secret,omitempty"`       // base32 TOTP secret
	OTPAuthURL  string   `json:"otpauth_url,omitempty"`  // otpauth:// provisioning URL
	BackupCodes []string `json:"backup_codes,omitempty"` // shown exactly once
}

// AckResponse is a minimal success acknowledgement.
type AckResponse struct {
	Message string `json:"message"`
}

// HealthChecks reports per-dependency health for the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by the /livez and /readyz endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
