package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email, username string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New(),
		Email:        email,
		Username:     username,
		Name:         "Test User",
		PasswordHash: "$argon2id$dummy",
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and fetch by id, email, username", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "alice@example.com", "alice")

		byID, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, byID.Email)

		byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byName, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, byName.ID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice@example.com", "alice")

		dup := domain.User{
			ID:           idx.New(),
			Email:        "alice@example.com",
			Username:     "alice2",
			PasswordHash: "x",
			Role:         domain.RoleUser,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "alice@example.com", "alice")

		dup := domain.User{
			ID:           idx.New(),
			Email:        "other@example.com",
			Username:     "alice",
			PasswordHash: "x",
			Role:         domain.RoleUser,
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		}
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.Users().GetUserByEmail(ctx, "ghost@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("activate flips is_active", func(t *testing.T) {
		s := newTestStore(t)
		now := time.Now().UTC()
		u := domain.User{
			ID:           idx.New(),
			Email:        "pending@example.com",
			Username:     "pending",
			PasswordHash: "x",
			Role:         domain.RoleUser,
			IsActive:     false,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, s.Users().CreateUser(ctx, u))

		require.NoError(t, s.Users().ActivateUser(ctx, u.ID))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.IsActive)
	})

	t.Run("set and clear 2FA material", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "mfa@example.com", "mfauser")

		secret := "JBSWY3DPEHPK3PXP"
		codes := "aaaa,bbbb"
		require.NoError(t, s.Users().SetTwoFactor(ctx, u.ID, true, &secret, &codes))

		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.TwoFactorEnabled)
		require.NotNil(t, got.TwoFactorSecret)
		require.Equal(t, secret, *got.TwoFactorSecret)

		require.NoError(t, s.Users().SetTwoFactor(ctx, u.ID, false, nil, nil))
		got, err = s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.False(t, got.TwoFactorEnabled)
		require.Nil(t, got.TwoFactorSecret)
		require.Nil(t, got.BackupCodes)
	})

	t.Run("stale unverified purge keeps active users", func(t *testing.T) {
		s := newTestStore(t)
		old := time.Now().UTC().Add(-48 * time.Hour)
		stale := domain.User{
			ID:           idx.New(),
			Email:        "stale@example.com",
			Username:     "stale",
			PasswordHash: "x",
			Role:         domain.RoleUser,
			IsActive:     false,
			CreatedAt:    old,
			UpdatedAt:    old,
		}
		require.NoError(t, s.Users().CreateUser(ctx, stale))
		keeper := seedUser(t, s, "keeper@example.com", "keeper")

		n, err := s.Users().DeleteStaleUnverified(ctx, time.Now().UTC().Add(-24*time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = s.Users().GetUserByID(ctx, stale.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Users().GetUserByID(ctx, keeper.ID)
		require.NoError(t, err)
	})
}

func TestOTPCodesRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newRecord := func(userID, code string, purpose domain.OTPPurpose) domain.OTPRecord {
		now := time.Now().UTC()
		return domain.OTPRecord{
			ID:        idx.New(),
			UserID:    userID,
			Code:      code,
			Purpose:   purpose,
			ExpiresAt: now.Add(10 * time.Minute),
			CreatedAt: now,
		}
	}

	t.Run("unique live code per user and purpose", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "otp@example.com", "otpuser")

		require.NoError(t, s.OTPCodes().CreateOTP(ctx, newRecord(u.ID, "111111", domain.OTPPurposeLogin)))

		// Second live record for the same (user, purpose) trips the index.
		err := s.OTPCodes().CreateOTP(ctx, newRecord(u.ID, "222222", domain.OTPPurposeLogin))
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		// Different purpose is fine.
		require.NoError(t, s.OTPCodes().CreateOTP(ctx, newRecord(u.ID, "333333", domain.OTPPurposeSignup)))
	})

	t.Run("supersede inside a transaction", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "otp@example.com", "otpuser")

		require.NoError(t, s.OTPCodes().CreateOTP(ctx, newRecord(u.ID, "111111", domain.OTPPurposeLogin)))

		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.OTPCodes().DeleteUnused(ctx, u.ID, domain.OTPPurposeLogin); err != nil {
				return err
			}
			return tx.OTPCodes().CreateOTP(ctx, newRecord(u.ID, "222222", domain.OTPPurposeLogin))
		})
		require.NoError(t, err)

		_, err = s.OTPCodes().GetUnused(ctx, u.ID, "111111", domain.OTPPurposeLogin)
		require.ErrorIs(t, err, store.ErrNotFound)

		rec, err := s.OTPCodes().GetUnused(ctx, u.ID, "222222", domain.OTPPurposeLogin)
		require.NoError(t, err)
		require.Equal(t, "222222", rec.Code)
	})

	t.Run("mark used consumes the record once", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "otp@example.com", "otpuser")

		rec := newRecord(u.ID, "654321", domain.OTPPurposeSignup)
		require.NoError(t, s.OTPCodes().CreateOTP(ctx, rec))

		require.NoError(t, s.OTPCodes().MarkUsed(ctx, rec.ID))

		// Used records no longer match verification lookups.
		_, err := s.OTPCodes().GetUnused(ctx, u.ID, "654321", domain.OTPPurposeSignup)
		require.ErrorIs(t, err, store.ErrNotFound)

		// A second consume is a no-op failure.
		require.ErrorIs(t, s.OTPCodes().MarkUsed(ctx, rec.ID), store.ErrNotFound)
	})

	t.Run("delete expired leaves live codes", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "otp@example.com", "otpuser")

		expired := newRecord(u.ID, "111111", domain.OTPPurposeLogin)
		expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		require.NoError(t, s.OTPCodes().CreateOTP(ctx, expired))
		live := newRecord(u.ID, "222222", domain.OTPPurposeSignup)
		require.NoError(t, s.OTPCodes().CreateOTP(ctx, live))

		require.NoError(t, s.OTPCodes().DeleteExpired(ctx))

		_, err := s.OTPCodes().GetUnused(ctx, u.ID, "111111", domain.OTPPurposeLogin)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.OTPCodes().GetUnused(ctx, u.ID, "222222", domain.OTPPurposeSignup)
		require.NoError(t, err)
	})
}

func TestRefreshTokensRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newToken := func(userID, hash string) domain.RefreshToken {
		now := time.Now().UTC()
		return domain.RefreshToken{
			ID:        idx.New(),
			UserID:    userID,
			TokenHash: hash,
			ExpiresAt: now.Add(7 * 24 * time.Hour),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	t.Run("create and fetch by hash", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "rt@example.com", "rtuser")

		tok := newToken(u.ID, "hash-1")
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, tok))

		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
		require.NoError(t, err)
		require.Equal(t, tok.ID, got.ID)
		require.False(t, got.Revoked)
	})

	t.Run("revoke single token", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "rt@example.com", "rtuser")
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, newToken(u.ID, "hash-1")))

		require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "hash-1"))

		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-1")
		require.NoError(t, err)
		require.True(t, got.Revoked)
	})

	t.Run("revoke all for user spares others", func(t *testing.T) {
		s := newTestStore(t)
		a := seedUser(t, s, "a@example.com", "usera")
		b := seedUser(t, s, "b@example.com", "userb")
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, newToken(a.ID, "a-1")))
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, newToken(a.ID, "a-2")))
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, newToken(b.ID, "b-1")))

		require.NoError(t, s.RefreshTokens().RevokeAllUserRefreshTokens(ctx, a.ID))

		for _, hash := range []string{"a-1", "a-2"} {
			got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
			require.NoError(t, err)
			require.True(t, got.Revoked)
		}
		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "b-1")
		require.NoError(t, err)
		require.False(t, got.Revoked)
	})

	t.Run("cascade delete with user", func(t *testing.T) {
		s := newTestStore(t)
		old := time.Now().UTC().Add(-48 * time.Hour)
		stale := domain.User{
			ID:           idx.New(),
			Email:        "stale@example.com",
			Username:     "stale",
			PasswordHash: "x",
			Role:         domain.RoleUser,
			CreatedAt:    old,
			UpdatedAt:    old,
		}
		require.NoError(t, s.Users().CreateUser(ctx, stale))
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, newToken(stale.ID, "stale-1")))

		_, err := s.Users().DeleteStaleUnverified(ctx, time.Now().UTC())
		require.NoError(t, err)

		_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, "stale-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
