package repository

import (
	"context"
	"time"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/model"
)

const userColumns = `id, first_name, last_name, email, password_hash, role, admin, verified,
    verification_token, reset_token, reset_token_expiry, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Admin,
		&user.Verified,
		&user.VerificationToken,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, admin, verified,
			verification_token, reset_token, reset_token_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role,
		user.Admin, user.Verified, user.VerificationToken, user.ResetToken,
		user.ResetTokenExpiry, user.CreatedAt, user.UpdatedAt)
	return translate(err, "user_not_found", "email_taken")
}

// CreateTeacherAccount writes the user row and its teacher profile in
// one transaction so either both exist afterwards or neither does.
func (s *Store) CreateTeacherAccount(ctx context.Context, user model.User, profile model.TeacherProfile) error {
	return s.WithTx(ctx, func(tx *Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.CreateTeacherProfile(ctx, profile)
	})
}

// CreateSpeakerAccount is the speaker counterpart of
// CreateTeacherAccount.
func (s *Store) CreateSpeakerAccount(ctx context.Context, user model.User, profile model.SpeakerProfile) error {
	return s.WithTx(ctx, func(tx *Store) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.CreateSpeakerProfile(ctx, profile)
	})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	return user, translate(err, "user_not_found", "email_taken")
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	return user, translate(err, "user_not_found", "email_taken")
}

func (s *Store) GetUserByVerificationToken(ctx context.Context, token string) (model.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token))
	return user, translate(err, "user_not_found", "email_taken")
}

func (s *Store) GetUserByResetToken(ctx context.Context, token string) (model.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token = $1`, token))
	return user, translate(err, "user_not_found", "email_taken")
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, translate(err, "user_not_found", "email_taken")
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translate(err, "user_not_found", "email_taken")
		}
		users = append(users, user)
	}
	return users, translate(rows.Err(), "user_not_found", "email_taken")
}

// SetUserVerified marks the account verified and consumes the
// verification token.
func (s *Store) SetUserVerified(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET verified = TRUE, verification_token = NULL, updated_at = $1 WHERE id = $2
	`, time.Now().UTC(), userID)
	return translate(err, "user_not_found", "email_taken")
}

func (s *Store) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET reset_token = $1, reset_token_expiry = $2, updated_at = $3 WHERE id = $4
	`, token, expiry, time.Now().UTC(), userID)
	return translate(err, "user_not_found", "email_taken")
}

// UpdateUserPassword replaces the hash and consumes any outstanding
// reset token.
func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = $2
		WHERE id = $3
	`, passwordHash, time.Now().UTC(), userID)
	return translate(err, "user_not_found", "email_taken")
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return translate(err, "user_not_found", "email_taken")
}

// DeleteTeacherAccount removes a teacher's requests, profile and user
// row in one transaction. It reports how many requests went with the
// account.
func (s *Store) DeleteTeacherAccount(ctx context.Context, userID string) (int64, error) {
	var removed int64
	err := s.WithTx(ctx, func(tx *Store) error {
		n, err := tx.DeleteRequestsByTeacher(ctx, userID)
		if err != nil {
			return err
		}
		removed = n
		if err := tx.DeleteTeacherProfileByUserID(ctx, userID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, userID)
	})
	return removed, err
}

// DeleteSpeakerAccount is the speaker counterpart of
// DeleteTeacherAccount; requests reference the speaker profile, not
// the user, so the profile id comes from the caller.
func (s *Store) DeleteSpeakerAccount(ctx context.Context, userID, speakerProfileID string) (int64, error) {
	var removed int64
	err := s.WithTx(ctx, func(tx *Store) error {
		if err := tx.DeleteSpeakerProfileByUserID(ctx, userID); err != nil {
			return err
		}
		n, err := tx.DeleteRequestsBySpeaker(ctx, speakerProfileID)
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteUser(ctx, userID)
	})
	return removed, err
}
