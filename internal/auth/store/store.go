package store

import (
	"context"
	"errors"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It is constructed once at startup and
// injected into every service; nothing in the codebase reaches for a global
// database handle.
type Store interface {
	Users() Users
	OTPCodes() OTPCodes
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn returns
	// an error and committing otherwise. This is the recommended way to run
	// multi-step operations that must be atomic (OTP supersession, refresh
	// token rotation).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and generic OTP requests.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByUsername backs the public profile endpoint.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email or username is taken; the
	// UNIQUE constraints guarantee no row is left behind.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile mutates name and avatar and bumps updated_at.
	UpdateProfile(ctx context.Context, userID, name, avatar string) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// ActivateUser flips is_active on (signup OTP verified).
	ActivateUser(ctx context.Context, userID string) error

	// UpdateLastLogin stamps last_login_at.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// SetTwoFactor updates the 2FA flag and secret material in one write.
	// Disabling passes nil for both secret and backupCodes to clear them.
	SetTwoFactor(ctx context.Context, userID string, enabled bool, secret, backupCodes *string) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// DeleteStaleUnverified removes inactive users created before the cutoff
	// (housekeeping; see DESIGN.md for the retention decision).
	DeleteStaleUnverified(ctx context.Context, before time.Time) (int64, error)
}

type OTPCodes interface {
	// CreateOTP inserts a new one-time code record.
	CreateOTP(ctx context.Context, rec domain.OTPRecord) error

	// DeleteUnused removes any unused records for (userID, purpose). Called
	// inside the same transaction as CreateOTP to keep the single-unused-
	// record invariant under concurrency.
	DeleteUnused(ctx context.Context, userID string, purpose domain.OTPPurpose) error

	// GetUnused returns the unused record matching all three fields exactly.
	GetUnused(ctx context.Context, userID, code string, purpose domain.OTPPurpose) (domain.OTPRecord, error)

	// MarkUsed consumes a record; it is never re-verifiable afterwards.
	MarkUsed(ctx context.Context, id string) error

	// DeleteExpired removes expired records (housekeeping, best-effort).
	DeleteExpired(ctx context.Context) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token row by its fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked on, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// RevokeAllUserRefreshTokens bulk revocation for a user (logout
	// everywhere, password change).
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}
