package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/pkg/cryptox"
	"github.com/monuwu/ClickTales-sub001/pkg/idx"
	"github.com/monuwu/ClickTales-sub001/pkg/slogx"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	backupCodeCount = 10
	backupCodeBytes = cryptox.TokenSize128
)

// TwoFactorProvision is the secret material handed back once when 2FA is
// enabled. Plaintext backup codes are never stored; only their fingerprints
// land on the user row.
type TwoFactorProvision struct {
	Secret      string
	OTPAuthURL  string
	BackupCodes []string
}

// CredentialService owns the password credential lifecycle: registration,
// password login, and password changes. The 2FA flag mutations also live
// here; they are only reached through the step-up gate after an OTP has been
// verified.
type CredentialService struct {
	Store  store.Store
	Tokens *TokenService
	Issuer string // account issuer for TOTP provisioning (e.g. "ClickTales")
}

// Register creates an ACTIVE user and immediately issues tokens. Duplicate
// email or username surfaces as store.ErrAlreadyExists; the UNIQUE
// constraints guarantee no partial row survives a lost race.
func (s *CredentialService) Register(ctx context.Context, email, username, name, password string) (domain.TokenPair, domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	pair, err := s.Tokens.Issue(ctx, user)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return pair, user, nil
}

// Login authenticates by email and password. Unknown user, inactive user and
// wrong password all collapse into ErrInvalidCredentials so a caller cannot
// probe which part failed. Note: this path ignores the 2FA flag; the HTTP
// surface routes interactive logins through the step-up gate.
func (s *CredentialService) Login(ctx context.Context, email, password string) (domain.TokenPair, domain.User, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	return s.finishLogin(ctx, user)
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every refresh token so all other sessions have to log in again.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	if err := s.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed, sessions revoked", slog.String("user_id", userID))
	return nil
}

// Enable2FA sets the flag and provisions the TOTP secret and backup codes.
// Callers (the step-up gate) have already verified an ENABLE_2FA OTP.
func (s *CredentialService) Enable2FA(ctx context.Context, userID string) (TwoFactorProvision, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return TwoFactorProvision{}, err
	}
	if user.TwoFactorEnabled {
		return TwoFactorProvision{}, ErrAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TwoFactorProvision{}, fmt.Errorf("generate totp key: %w", err)
	}

	backupCodes := make([]string, backupCodeCount)
	fingerprints := make([]string, backupCodeCount)
	for i := range backupCodes {
		code, err := cryptox.GenerateToken(backupCodeBytes)
		if err != nil {
			return TwoFactorProvision{}, err
		}
		backupCodes[i] = code
		fingerprints[i] = cryptox.FingerprintToken(code)
	}

	secret := key.Secret()
	joined := strings.Join(fingerprints, " ")
	if err := s.Store.Users().SetTwoFactor(ctx, userID, true, &secret, &joined); err != nil {
		return TwoFactorProvision{}, err
	}

	slogx.FromContext(ctx).Info("two-factor enabled", slog.String("user_id", userID))
	return TwoFactorProvision{
		Secret:      secret,
		OTPAuthURL:  key.URL(),
		BackupCodes: backupCodes,
	}, nil
}

// Disable2FA clears the flag and all stored secret material.
func (s *CredentialService) Disable2FA(ctx context.Context, userID string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TwoFactorEnabled {
		return ErrNotEnabled
	}

	if err := s.Store.Users().SetTwoFactor(ctx, userID, false, nil, nil); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("two-factor disabled", slog.String("user_id", userID))
	return nil
}

// authenticate resolves the user and checks the password. Every failure mode
// returns the same ErrInvalidCredentials.
func (s *CredentialService) authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if !user.IsActive {
		return domain.User{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	return user, nil
}

// finishLogin stamps last_login_at and issues tokens.
func (s *CredentialService) finishLogin(ctx context.Context, user domain.User) (domain.TokenPair, domain.User, error) {
	now := time.Now().UTC()
	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}
	user.LastLoginAt = &now

	pair, err := s.Tokens.Issue(ctx, user)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}
	return pair, user, nil
}
