package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
)

type otpCodesRepo struct {
	db dbtx
}

func (r *otpCodesRepo) CreateOTP(ctx context.Context, rec domain.OTPRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_codes (id, user_id, code, purpose, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Code, string(rec.Purpose), rec.ExpiresAt.UTC(), rec.Used, rec.CreatedAt.UTC(),
	)
	return mapConflict(err)
}

func (r *otpCodesRepo) DeleteUnused(ctx context.Context, userID string, purpose domain.OTPPurpose) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM otp_codes WHERE user_id = ? AND purpose = ? AND used = 0`,
		userID, string(purpose))
	return err
}

func (r *otpCodesRepo) GetUnused(ctx context.Context, userID, code string, purpose domain.OTPPurpose) (domain.OTPRecord, error) {
	var rec domain.OTPRecord
	var purposeStr string
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, code, purpose, expires_at, used, created_at
		FROM otp_codes
		WHERE user_id = ? AND code = ? AND purpose = ? AND used = 0`,
		userID, code, string(purpose))
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Code, &purposeStr, &rec.ExpiresAt, &rec.Used, &rec.CreatedAt)
	if err != nil {
		return domain.OTPRecord{}, mapNotFound(err)
	}
	rec.Purpose = domain.OTPPurpose(purposeStr)
	return rec, nil
}

func (r *otpCodesRepo) MarkUsed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE otp_codes SET used = 1 WHERE id = ? AND used = 0`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *otpCodesRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM otp_codes WHERE expires_at < ?`, time.Now().UTC())
	return err
}
