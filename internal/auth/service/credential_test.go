package service

import (
	"context"
	"testing"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates an active user with tokens", func(t *testing.T) {
		ts := newTestServices(t)

		pair, user, err := ts.Credentials.Register(ctx, "Alice@Example.com", "alice", "Alice", "hunter2!")
		require.NoError(t, err)
		require.True(t, user.IsActive)
		require.Equal(t, domain.RoleUser, user.Role)
		require.Equal(t, "alice@example.com", user.Email) // normalized
		require.NotEmpty(t, pair.AccessToken)
		require.NotEqual(t, "hunter2!", user.PasswordHash)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		ts := newTestServices(t)
		registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		_, _, err := ts.Credentials.Register(ctx, "alice@example.com", "alice2", "Alice", "hunter2!")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		ts := newTestServices(t)
		registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		_, _, err := ts.Credentials.Register(ctx, "other@example.com", "alice", "Alice", "hunter2!")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success stamps last login", func(t *testing.T) {
		ts := newTestServices(t)
		registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		pair, user, err := ts.Credentials.Login(ctx, "alice@example.com", "hunter2!")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotNil(t, user.LastLoginAt)
		within(t, time.Now().UTC(), *user.LastLoginAt, 5*time.Second)
	})

	t.Run("failure modes are indistinguishable", func(t *testing.T) {
		ts := newTestServices(t)
		registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		// Unknown user.
		_, _, err := ts.Credentials.Login(ctx, "ghost@example.com", "hunter2!")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		// Wrong password.
		_, _, err = ts.Credentials.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		// Inactive user, correct password.
		pending, err := ts.Signup.RequestSignupOTP(ctx, "bob@example.com", "bob", "hunter2!")
		require.NoError(t, err)
		_, _, err = ts.Credentials.Login(ctx, pending.Email, "hunter2!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rehashes and revokes all sessions", func(t *testing.T) {
		ts := newTestServices(t)
		u := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")
		pair, _, err := ts.Credentials.Login(ctx, "alice@example.com", "hunter2!")
		require.NoError(t, err)

		require.NoError(t, ts.Credentials.ChangePassword(ctx, u.ID, "hunter2!", "n3w-secret"))

		// Old password no longer works; new one does.
		_, _, err = ts.Credentials.Login(ctx, "alice@example.com", "hunter2!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = ts.Credentials.Login(ctx, "alice@example.com", "n3w-secret")
		require.NoError(t, err)

		// The pre-change session was revoked.
		_, _, err = ts.Tokens.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("wrong current password is rejected", func(t *testing.T) {
		ts := newTestServices(t)
		u := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		err := ts.Credentials.ChangePassword(ctx, u.ID, "wrong", "n3w-secret")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		ts := newTestServices(t)
		err := ts.Credentials.ChangePassword(ctx, idx.New(), "x", "y")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestTwoFactorFlags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("enable provisions secret and backup codes", func(t *testing.T) {
		ts := newTestServices(t)
		u := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		prov, err := ts.Credentials.Enable2FA(ctx, u.ID)
		require.NoError(t, err)
		require.NotEmpty(t, prov.Secret)
		require.Contains(t, prov.OTPAuthURL, "otpauth://")
		require.Len(t, prov.BackupCodes, backupCodeCount)

		got, err := ts.Users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.TwoFactorEnabled)
		require.NotNil(t, got.TwoFactorSecret)

		// Plaintext backup codes are not stored.
		for _, code := range prov.BackupCodes {
			require.NotContains(t, *got.BackupCodes, code)
		}

		_, err = ts.Credentials.Enable2FA(ctx, u.ID)
		require.ErrorIs(t, err, ErrAlreadyEnabled)
	})

	t.Run("disable clears secret material", func(t *testing.T) {
		ts := newTestServices(t)
		u := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")
		_, err := ts.Credentials.Enable2FA(ctx, u.ID)
		require.NoError(t, err)

		require.NoError(t, ts.Credentials.Disable2FA(ctx, u.ID))

		got, err := ts.Users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.TwoFactorEnabled)
		require.Nil(t, got.TwoFactorSecret)
		require.Nil(t, got.BackupCodes)

		require.ErrorIs(t, ts.Credentials.Disable2FA(ctx, u.ID), ErrNotEnabled)
	})
}
