package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dangmn/chatline/internal/domain"
)

// CreateUser inserts one user record.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO users (id, username, password, phone, avt_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(user.ID),
		user.Username,
		user.PasswordHash,
		user.Phone,
		user.AvatarURL,
		toMillis(user.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// UserByID fetches a user by identity. ErrNotFound when absent.
func (s *Store) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return s.scanUser(s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, username, password, phone, avt_url, created_at FROM users WHERE id = ?`,
		string(id),
	))
}

// UserByUsername fetches a user by username. ErrNotFound when absent.
func (s *Store) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.scanUser(s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, username, password, phone, avt_url, created_at FROM users WHERE username = ?`,
		username,
	))
}

func (s *Store) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var createdAt int64
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Phone, &user.AvatarURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

// ListUsers returns every user, ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, username, password, phone, avt_url, created_at FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		var createdAt int64
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Phone, &user.AvatarURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		user.CreatedAt = fromMillis(createdAt)
		users = append(users, user)
	}
	return users, rows.Err()
}
