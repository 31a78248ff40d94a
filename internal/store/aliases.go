package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dangmn/chatline/internal/domain"
)

// AliasName returns the display name viewer has set for subject.
// found is false when no alias row exists.
func (s *Store) AliasName(ctx context.Context, viewer, subject domain.UserID) (string, bool, error) {
	var name string
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT alias_name FROM alias WHERE user_set = ? AND user_get = ?`,
		string(viewer),
		string(subject),
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query alias: %w", err)
	}
	return name, true, nil
}

// UpsertAlias creates or replaces the alias viewer keeps for subject.
func (s *Store) UpsertAlias(ctx context.Context, alias *domain.Alias) error {
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO alias (id, user_set, user_get, alias_name) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_set, user_get) DO UPDATE SET alias_name = excluded.alias_name`,
		alias.ID,
		string(alias.Viewer),
		string(alias.Subject),
		alias.Name,
	)
	if err != nil {
		return fmt.Errorf("upsert alias: %w", err)
	}
	return nil
}
