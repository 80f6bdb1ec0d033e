package service

import (
	"context"
	"testing"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

// enable2FAFor walks a user through the full OTP-gated enable flow.
func enable2FAFor(t *testing.T, ts *testServices, user domain.User) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, ts.OTPs.CreateAndSend(ctx, user, domain.OTPPurposeEnable2FA))
	_, err := ts.TwoFactor.Enable(ctx, user.ID, ts.Sender.last(user.Email))
	require.NoError(t, err)
}

func TestLoginWithOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("2fa off issues tokens directly", func(t *testing.T) {
		ts := newTestServices(t)
		registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		res, err := ts.TwoFactor.LoginWithOTP(ctx, "alice@example.com", "hunter2!", "")
		require.NoError(t, err)
		require.False(t, res.RequiresOTP)
		require.NotEmpty(t, res.Tokens.AccessToken)
	})

	t.Run("bad password fails like a plain login", func(t *testing.T) {
		ts := newTestServices(t)
		registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		_, err := ts.TwoFactor.LoginWithOTP(ctx, "alice@example.com", "wrong", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("step-up round trip", func(t *testing.T) {
		ts := newTestServices(t)
		alice := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")
		enable2FAFor(t, ts, alice)

		// Correct password, no code: soft signal, no tokens.
		res, err := ts.TwoFactor.LoginWithOTP(ctx, "alice@example.com", "hunter2!", "")
		require.NoError(t, err)
		require.True(t, res.RequiresOTP)
		require.Empty(t, res.Tokens.AccessToken)

		// Client requests a LOGIN code and re-submits.
		require.NoError(t, ts.OTPs.Request(ctx, "alice@example.com", domain.OTPPurposeLogin))
		code := ts.Sender.last("alice@example.com")

		res, err = ts.TwoFactor.LoginWithOTP(ctx, "alice@example.com", "hunter2!", code)
		require.NoError(t, err)
		require.False(t, res.RequiresOTP)
		require.NotEmpty(t, res.Tokens.AccessToken)
		require.NotNil(t, res.User.LastLoginAt)
	})

	t.Run("bad code carries the otp reason", func(t *testing.T) {
		ts := newTestServices(t)
		alice := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")
		enable2FAFor(t, ts, alice)

		_, err := ts.TwoFactor.LoginWithOTP(ctx, "alice@example.com", "hunter2!", "000000")
		rej, ok := IsOTPRejected(err)
		require.True(t, ok)
		require.Equal(t, domain.OTPReasonInvalid, rej.Reason)
	})
}

func TestTwoFactorToggle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("enable requires a verified code", func(t *testing.T) {
		ts := newTestServices(t)
		u := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		_, err := ts.TwoFactor.Enable(ctx, u.ID, "000000")
		_, ok := IsOTPRejected(err)
		require.True(t, ok)

		require.NoError(t, ts.OTPs.CreateAndSend(ctx, u, domain.OTPPurposeEnable2FA))
		prov, err := ts.TwoFactor.Enable(ctx, u.ID, ts.Sender.last(u.Email))
		require.NoError(t, err)
		require.NotEmpty(t, prov.Secret)
	})

	t.Run("disable requires a verified code", func(t *testing.T) {
		ts := newTestServices(t)
		u := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")
		enable2FAFor(t, ts, u)

		err := ts.TwoFactor.Disable(ctx, u.ID, "000000")
		_, ok := IsOTPRejected(err)
		require.True(t, ok)

		require.NoError(t, ts.OTPs.CreateAndSend(ctx, u, domain.OTPPurposeDisable2FA))
		require.NoError(t, ts.TwoFactor.Disable(ctx, u.ID, ts.Sender.last(u.Email)))

		got, err := ts.Users.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.TwoFactorEnabled)
	})
}
