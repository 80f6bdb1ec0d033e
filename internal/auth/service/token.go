package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/pkg/cryptox"
	"github.com/monuwu/ClickTales-sub001/pkg/idx"
	"github.com/monuwu/ClickTales-sub001/pkg/jwtx"
	"github.com/monuwu/ClickTales-sub001/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrAlreadyEnabled     = errors.New("two_factor_already_enabled")
	ErrNotEnabled         = errors.New("two_factor_not_enabled")
)

// TokenService mints access tokens and manages the refresh token allow-list.
// Access tokens are stateless HS256 JWTs; refresh tokens are opaque values
// whose SHA-256 fingerprints are persisted, so they survive restarts and can
// be revoked individually or per user.
type TokenService struct {
	Signer     jwtx.Signer
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue creates a fresh token pair for an already-authenticated user and
// persists the refresh fingerprint.
func (s *TokenService) Issue(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.signAccess(user, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh := domain.RefreshToken{
		ID:        idx.New(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued, atomically, so a replayed old token can never mint tokens
// again. The access token is signed from the CURRENT user record, so role or
// profile changes are picked up at rotation. Unknown, revoked and expired
// tokens all map to ErrInvalidRefresh.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (domain.TokenPair, domain.User, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)
	hash := cryptox.FingerprintToken(refreshOpaque)

	var (
		result  domain.TokenPair
		current domain.User
	)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		row, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}

		if row.Revoked || now.After(row.ExpiresAt) {
			l.Info("refresh token rejected",
				slog.String("user_id", row.UserID),
				slog.Bool("revoked", row.Revoked))
			return ErrInvalidRefresh
		}

		user, err := tx.Users().GetUserByID(ctx, row.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidRefresh
			}
			return err
		}
		if !user.IsActive {
			return ErrInvalidRefresh
		}

		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, hash); err != nil {
			return err
		}

		access, err := s.signAccess(user, now)
		if err != nil {
			return err
		}

		nextOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}

		next := domain.RefreshToken{
			ID:        idx.New(),
			UserID:    user.ID,
			TokenHash: cryptox.FingerprintToken(nextOpaque),
			ExpiresAt: now.Add(s.RefreshTTL),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, next); err != nil {
			return err
		}

		result = domain.TokenPair{
			AccessToken:  access,
			RefreshToken: nextOpaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
		}
		current = user
		return nil
	})
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	return result, current, nil
}

// Revoke invalidates a single refresh token (logout of one session). Unknown
// tokens are reported as ErrInvalidRefresh so the handler can 401.
func (s *TokenService) Revoke(ctx context.Context, refreshOpaque string) error {
	hash := cryptox.FingerprintToken(refreshOpaque)
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidRefresh
	}
	return err
}

// RevokeAllForUser invalidates every session of a user. Called after a
// password change and for "logout everywhere".
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	return s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
}

func (s *TokenService) signAccess(user domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		user.ID, user.Email, user.Username, user.Name, string(user.Role),
		s.AccessTTL, s.Issuer, now,
	)
	return s.Signer.Sign(claims)
}
