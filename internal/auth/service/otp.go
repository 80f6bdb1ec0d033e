package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/notify"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/pkg/cryptox"
	"github.com/monuwu/ClickTales-sub001/pkg/idx"
	"github.com/monuwu/ClickTales-sub001/pkg/slogx"
)

// DefaultOTPTTL is how long a one-time code stays verifiable.
const DefaultOTPTTL = 10 * time.Minute

// OTPService issues and verifies one-time codes. Codes are 6 random digits,
// expire after TTL, and are strictly single-use: any verification against a
// matching record consumes it, and issuing a new code for the same
// (user, purpose) supersedes the previous one.
type OTPService struct {
	Store  store.Store
	Sender notify.Sender
	TTL    time.Duration
}

func (s *OTPService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultOTPTTL
}

// Create generates and stores a new code for (userID, purpose), superseding
// any unused code in the same bucket. The delete and insert run in one
// transaction so concurrent requests cannot leave two live codes behind.
// Returns the plaintext code for delivery.
func (s *OTPService) Create(ctx context.Context, userID string, purpose domain.OTPPurpose) (string, error) {
	code, err := cryptox.GenerateOTPCode()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	rec := domain.OTPRecord{
		ID:        idx.New(),
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.OTPCodes().DeleteUnused(ctx, userID, purpose); err != nil {
			return err
		}
		return tx.OTPCodes().CreateOTP(ctx, rec)
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// CreateAndSend issues a code and delivers it to the user's email. Delivery
// failure is returned to the caller; the stored code stays valid so a retry
// request supersedes it cleanly.
func (s *OTPService) CreateAndSend(ctx context.Context, user domain.User, purpose domain.OTPPurpose) error {
	code, err := s.Create(ctx, user.ID, purpose)
	if err != nil {
		return err
	}

	if err := s.Sender.Send(ctx, user.Email, code, purpose); err != nil {
		slogx.FromContext(ctx).Error("otp delivery failed",
			slog.String("user_id", user.ID),
			slog.String("purpose", string(purpose)),
			slog.Any("error", err))
		return err
	}
	return nil
}

// Request resolves a user by email, then creates and sends a code for the
// given purpose. store.ErrNotFound passes through when no such user exists.
func (s *OTPService) Request(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.CreateAndSend(ctx, user, purpose)
}

// Verify checks a presented code. The outcome is a value, not an error: a
// wrong or expired code is an expected result of the operation. Errors are
// reserved for storage failures.
//
// A code that matches (userID, code, purpose) is consumed no matter what —
// including when it turns out to be expired — so no record is ever
// verifiable twice.
func (s *OTPService) Verify(ctx context.Context, userID, code string, purpose domain.OTPPurpose) (domain.OTPResult, error) {
	rec, err := s.Store.OTPCodes().GetUnused(ctx, userID, code, purpose)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// No side effects on a miss: an unused stored code stays valid.
			return domain.OTPResult{Valid: false, Reason: domain.OTPReasonInvalid}, nil
		}
		return domain.OTPResult{}, err
	}

	if err := s.Store.OTPCodes().MarkUsed(ctx, rec.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the race against a concurrent verify; the code was
			// already consumed.
			return domain.OTPResult{Valid: false, Reason: domain.OTPReasonInvalid}, nil
		}
		return domain.OTPResult{}, err
	}

	if time.Now().UTC().After(rec.ExpiresAt) {
		return domain.OTPResult{Valid: false, Reason: domain.OTPReasonExpired}, nil
	}

	return domain.OTPResult{Valid: true}, nil
}
