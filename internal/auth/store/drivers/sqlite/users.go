package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, username, name, avatar, password_hash, role,
	is_active, two_factor_enabled, two_factor_secret, backup_codes,
	last_login_at, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, username, name, avatar, password_hash, role,
			is_active, two_factor_enabled, two_factor_secret, backup_codes,
			last_login_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.Name, u.Avatar, u.PasswordHash, string(u.Role),
		u.IsActive, u.TwoFactorEnabled, toNullString(u.TwoFactorSecret), toNullString(u.BackupCodes),
		toNullTime(u.LastLoginAt), u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID, name, avatar string) error {
	return r.exec(ctx, `
		UPDATE users SET name = ?, avatar = ?, updated_at = ?
		WHERE id = ?`, name, avatar, time.Now().UTC(), userID)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return r.exec(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ?
		WHERE id = ?`, newHash, time.Now().UTC(), userID)
}

func (r *usersRepo) ActivateUser(ctx context.Context, userID string) error {
	return r.exec(ctx, `
		UPDATE users SET is_active = 1, updated_at = ?
		WHERE id = ?`, time.Now().UTC(), userID)
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = ?
		WHERE id = ?`, at.UTC(), time.Now().UTC(), userID)
}

func (r *usersRepo) SetTwoFactor(ctx context.Context, userID string, enabled bool, secret, backupCodes *string) error {
	return r.exec(ctx, `
		UPDATE users SET two_factor_enabled = ?, two_factor_secret = ?, backup_codes = ?, updated_at = ?
		WHERE id = ?`, enabled, toNullString(secret), toNullString(backupCodes), time.Now().UTC(), userID)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) DeleteStaleUnverified(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM users WHERE is_active = 0 AND created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// exec runs a mutation that must match exactly one row, mapping a zero
// row count to store.ErrNotFound.
func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u           domain.User
		role        string
		secret      sql.NullString
		backupCodes sql.NullString
		lastLogin   sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Name, &u.Avatar, &u.PasswordHash, &role,
		&u.IsActive, &u.TwoFactorEnabled, &secret, &backupCodes,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.Role = domain.Role(role)
	u.TwoFactorSecret = mapNullString(secret)
	u.BackupCodes = mapNullString(backupCodes)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
