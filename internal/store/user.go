package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hirehub/apiserver/types"
)

const userColumns = `id, first_name, last_name, email, mobile, recovery_email, role, status,
		       date_of_birth, image_id, image_url, media_folder, email_verified,
		       password_hash, otp_hash, created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Mobile,
		&user.RecoveryEmail,
		&user.Role,
		&user.Status,
		&user.DateOfBirth,
		&user.Image.ID,
		&user.Image.URL,
		&user.MediaFolder,
		&user.EmailVerified,
		&user.PasswordHash,
		&user.OTPHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByEmailOrMobile resolves a user by either credential, matching the
// sign-in contract where both are accepted.
func (r *UserRepository) GetByEmailOrMobile(ctx context.Context, email, mobile string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 OR mobile = $2`
	return scanUser(r.db.QueryRowContext(ctx, query, email, mobile))
}

func (r *UserRepository) ListByRecoveryEmail(ctx context.Context, recoveryEmail string) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE recovery_email = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, recoveryEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var user types.User
		if err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.Mobile,
			&user.RecoveryEmail,
			&user.Role,
			&user.Status,
			&user.DateOfBirth,
			&user.Image.ID,
			&user.Image.URL,
			&user.MediaFolder,
			&user.EmailVerified,
			&user.PasswordHash,
			&user.OTPHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (first_name, last_name, email, mobile, recovery_email, role, status,
				   date_of_birth, image_id, image_url, media_folder, email_verified,
				   password_hash, otp_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Mobile,
		user.RecoveryEmail,
		user.Role,
		user.Status,
		user.DateOfBirth,
		user.Image.ID,
		user.Image.URL,
		user.MediaFolder,
		user.EmailVerified,
		user.PasswordHash,
		user.OTPHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET first_name = $1,
			last_name = $2,
			email = $3,
			mobile = $4,
			recovery_email = $5,
			role = $6,
			status = $7,
			date_of_birth = $8,
			image_id = $9,
			image_url = $10,
			media_folder = $11,
			email_verified = $12,
			password_hash = $13,
			otp_hash = $14,
			updated_at = $15
		WHERE id = $16`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Mobile,
		user.RecoveryEmail,
		user.Role,
		user.Status,
		user.DateOfBirth,
		user.Image.ID,
		user.Image.URL,
		user.MediaFolder,
		user.EmailVerified,
		user.PasswordHash,
		user.OTPHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// MarkEmailVerified flips the verified flag for an unverified account.
// Returns ErrNotFound when no such unverified account exists.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, email string) (types.User, error) {
	const query = `
		UPDATE users
		SET email_verified = TRUE, updated_at = NOW()
		WHERE email = $1 AND email_verified = FALSE
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
