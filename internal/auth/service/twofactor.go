package service

import (
	"context"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
)

// TwoFactorLoginResult is the step-up gate's outcome. RequiresOTP is a
// protocol signal, not an error: the password was correct but a LOGIN code
// must be submitted before tokens are issued.
type TwoFactorLoginResult struct {
	RequiresOTP bool
	Tokens      domain.TokenPair
	User        domain.User
}

// TwoFactorService orchestrates the password-then-OTP step-up login and the
// OTP-gated enable/disable of 2FA. Password checking and flag mutation are
// delegated to CredentialService; code verification to OTPService.
type TwoFactorService struct {
	Credentials *CredentialService
	OTPs        *OTPService
}

// LoginWithOTP performs the step-up login.
//
// The password is verified first, failing exactly like a plain login. With
// 2FA off, tokens are issued directly. With 2FA on and no code, the soft
// {RequiresOTP: true} result is returned and no tokens are minted; the
// client requests a LOGIN code and re-submits. With a code present, it must
// verify as a LOGIN OTP, otherwise *ErrOTPRejected carries the reason.
func (s *TwoFactorService) LoginWithOTP(ctx context.Context, email, password, code string) (TwoFactorLoginResult, error) {
	user, err := s.Credentials.authenticate(ctx, email, password)
	if err != nil {
		return TwoFactorLoginResult{}, err
	}

	if user.TwoFactorEnabled {
		if code == "" {
			return TwoFactorLoginResult{RequiresOTP: true}, nil
		}

		result, err := s.OTPs.Verify(ctx, user.ID, code, domain.OTPPurposeLogin)
		if err != nil {
			return TwoFactorLoginResult{}, err
		}
		if !result.Valid {
			return TwoFactorLoginResult{}, &ErrOTPRejected{Reason: result.Reason}
		}
	}

	pair, user, err := s.Credentials.finishLogin(ctx, user)
	if err != nil {
		return TwoFactorLoginResult{}, err
	}

	return TwoFactorLoginResult{Tokens: pair, User: user}, nil
}

// Enable verifies an ENABLE_2FA code, then provisions 2FA for the user.
func (s *TwoFactorService) Enable(ctx context.Context, userID, code string) (TwoFactorProvision, error) {
	result, err := s.OTPs.Verify(ctx, userID, code, domain.OTPPurposeEnable2FA)
	if err != nil {
		return TwoFactorProvision{}, err
	}
	if !result.Valid {
		return TwoFactorProvision{}, &ErrOTPRejected{Reason: result.Reason}
	}

	return s.Credentials.Enable2FA(ctx, userID)
}

// Disable verifies a DISABLE_2FA code, then clears the flag and secrets.
func (s *TwoFactorService) Disable(ctx context.Context, userID, code string) error {
	result, err := s.OTPs.Verify(ctx, userID, code, domain.OTPPurposeDisable2FA)
	if err != nil {
		return err
	}
	if !result.Valid {
		return &ErrOTPRejected{Reason: result.Reason}
	}

	return s.Credentials.Disable2FA(ctx, userID)
}
