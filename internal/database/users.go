package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"renthub/internal/models"

	"github.com/mattn/go-sqlite3"
)

const userColumns = `id, name, email, telegram_id, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.TelegramID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (db *DB) GetUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveUser inserts the user when it has no id yet, otherwise updates it.
func (db *DB) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now()

	if user.ID == 0 {
		query := `INSERT INTO users (name, email, telegram_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
		result, err := db.ExecContext(ctx, query, user.Name, user.Email, user.TelegramID, now, now)
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}

		saved := *user
		saved.ID = id
		saved.CreatedAt = now
		saved.UpdatedAt = now
		return &saved, nil
	}

	query := `UPDATE users SET name = ?, email = ?, telegram_id = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, user.Name, user.Email, user.TelegramID, now, user.ID)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrUserNotFound
	}

	saved := *user
	saved.UpdatedAt = now
	return &saved, nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
