package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"subliBack/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        INSERT INTO users (name, email, password, role, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	result, err := r.DB.ExecContext(ctx, query, user.Name, user.Email, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(lastID)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := `SELECT id, name, email, password, role, created_at, updated_at FROM users WHERE id = ?`

	var user models.User
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT id, name, email, password, role, created_at, updated_at FROM users WHERE email = ?`

	var user models.User
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, name, email, role, created_at, updated_at FROM users ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int, role string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE users SET role = ?, updated_at = NOW() WHERE id = ?`, role, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, hashedPassword string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET password = ?, updated_at = NOW() WHERE id = ?`, hashedPassword, id)
	return err
}

// Sessions live on the users table: one refresh token per user.

func (r *UserRepository) SetSession(ctx context.Context, userID int, session models.Session) error {
	query := `UPDATE users SET refresh_token = ?, refresh_expires_at = ? WHERE id = ?`

	result, err := r.DB.ExecContext(ctx, query, session.RefreshToken, session.ExpiresAt, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	query := `SELECT id, role, refresh_token, refresh_expires_at FROM users WHERE refresh_token = ?`

	var session models.Session
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(
		&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, models.ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (r *UserRepository) ClearSession(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET refresh_token = NULL, refresh_expires_at = NULL WHERE id = ?`, userID)
	return err
}

// Password-reset codes, also kept on the users table.

func (r *UserRepository) SetResetCode(ctx context.Context, userID int, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET reset_code = ?, reset_expires_at = ? WHERE id = ?`, code, expiresAt, userID)
	return err
}

// GetResetCode returns the stored code and its deadline for the user, or
// ErrInvalidResetCode when no code is pending.
func (r *UserRepository) GetResetCode(ctx context.Context, userID int) (string, time.Time, error) {
	query := `SELECT reset_code, reset_expires_at FROM users WHERE id = ? AND reset_code IS NOT NULL`

	var (
		code      string
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&code, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, models.ErrInvalidResetCode
		}
		return "", time.Time{}, err
	}
	return code, expiresAt, nil
}

func (r *UserRepository) ClearResetCode(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET reset_code = NULL, reset_expires_at = NULL WHERE id = ?`, userID)
	return err
}
