package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/pkg/cryptox"
	"github.com/monuwu/ClickTales-sub001/pkg/idx"
	"github.com/monuwu/ClickTales-sub001/pkg/slogx"
)

// ErrOTPRejected carries the OTP service's reason for a failed verification
// through the signup and 2FA flows to the HTTP layer.
type ErrOTPRejected struct {
	Reason string
}

func (e *ErrOTPRejected) Error() string { return e.Reason }

// SignupPending is the response of a signup request: the account exists but
// cannot authenticate until the emailed code is verified.
type SignupPending struct {
	UserID string
	Email  string
}

// SignupService drives email-verified registration. The user row is created
// inactive, a SIGNUP code is emailed, and only a successful verification
// activates the account and hands out tokens.
type SignupService struct {
	Store  store.Store
	OTPs   *OTPService
	Tokens *TokenService
}

// RequestSignupOTP creates the inactive user and sends the verification
// code. No tokens are issued. Duplicate email/username fails with
// store.ErrAlreadyExists before any code is sent.
func (s *SignupService) RequestSignupOTP(ctx context.Context, email, username, password string) (SignupPending, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return SignupPending{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return SignupPending{}, err
	}

	if err := s.OTPs.CreateAndSend(ctx, user, domain.OTPPurposeSignup); err != nil {
		return SignupPending{}, err
	}

	slogx.FromContext(ctx).Info("signup pending verification", slog.String("user_id", user.ID))
	return SignupPending{UserID: user.ID, Email: user.Email}, nil
}

// VerifySignupOTP consumes the SIGNUP code. Success activates the account
// and issues the first token pair. A failed verification leaves the user
// unverified; the client may request a fresh code, which supersedes the old
// one.
func (s *SignupService) VerifySignupOTP(ctx context.Context, userID, code string) (domain.TokenPair, domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	result, err := s.OTPs.Verify(ctx, userID, code, domain.OTPPurposeSignup)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}
	if !result.Valid {
		return domain.TokenPair{}, domain.User{}, &ErrOTPRejected{Reason: result.Reason}
	}

	if !user.IsActive {
		if err := s.Store.Users().ActivateUser(ctx, userID); err != nil {
			return domain.TokenPair{}, domain.User{}, err
		}
		user.IsActive = true
	}

	now := time.Now().UTC()
	if err := s.Store.Users().UpdateLastLogin(ctx, userID, now); err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}
	user.LastLoginAt = &now

	pair, err := s.Tokens.Issue(ctx, user)
	if err != nil {
		return domain.TokenPair{}, domain.User{}, err
	}

	slogx.FromContext(ctx).Info("signup verified", slog.String("user_id", userID))
	return pair, user, nil
}

// IsOTPRejected unwraps an *ErrOTPRejected from err, if present.
func IsOTPRejected(err error) (*ErrOTPRejected, bool) {
	var rej *ErrOTPRejected
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
