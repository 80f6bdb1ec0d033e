package service

import (
	"context"
	"testing"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes expired tokens and codes", func(t *testing.T) {
		ts := newTestServices(t)
		u := registerUser(t, ts, "alice@example.com", "alice", "hunter2!")

		ts.Tokens.RefreshTTL = -time.Second
		expired, err := ts.Tokens.Issue(ctx, u)
		require.NoError(t, err)
		ts.Tokens.RefreshTTL = 7 * 24 * time.Hour
		live, err := ts.Tokens.Issue(ctx, u)
		require.NoError(t, err)

		ts.OTPs.TTL = -time.Second
		_, err = ts.OTPs.Create(ctx, u.ID, domain.OTPPurposeLogin)
		require.NoError(t, err)
		ts.OTPs.TTL = 0

		hk := NewHousekeepingService(ts.Store, quietLogger(), time.Hour, 0)
		hk.cleanup()

		_, _, err = ts.Tokens.Refresh(ctx, expired.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
		_, _, err = ts.Tokens.Refresh(ctx, live.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("purges stale unverified users when enabled", func(t *testing.T) {
		ts := newTestServices(t)
		pending, err := ts.Signup.RequestSignupOTP(ctx, "stale@example.com", "stale", "hunter2!")
		require.NoError(t, err)

		// TTL disabled: the user survives.
		hk := NewHousekeepingService(ts.Store, quietLogger(), time.Hour, 0)
		hk.cleanup()
		_, err = ts.Users.GetUserByID(ctx, pending.UserID)
		require.NoError(t, err)

		// A tiny negative-cutoff TTL purges everything created before now.
		hk = NewHousekeepingService(ts.Store, quietLogger(), time.Hour, time.Nanosecond)
		time.Sleep(10 * time.Millisecond)
		hk.cleanup()
		_, err = ts.Users.GetUserByID(ctx, pending.UserID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("start and stop are clean", func(t *testing.T) {
		ts := newTestServices(t)
		hk := NewHousekeepingService(ts.Store, quietLogger(), time.Hour, 0)
		hk.Start()
		hk.Stop()
	})
}
