package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxAliasLen = 50

var (
	ErrAliasEmpty   = errors.New("alias name empty")
	ErrAliasTooLong = errors.New("alias name too long")
)

// Alias is a per-viewer override of another user's display name.
// Viewer set it, subject carries it; only the viewer ever sees it.
type Alias struct {
	ID      string `json:"id"`
	Viewer  UserID `json:"user_set"`
	Subject UserID `json:"user_get"`
	Name    string `json:"alias_name"`
}

func NewAlias(viewer, subject UserID, name string) (*Alias, error) {
	if len(name) == 0 {
		return nil, ErrAliasEmpty
	}
	if len(name) > MaxAliasLen {
		return nil, ErrAliasTooLong
	}
	return &Alias{
		ID:      uuid.NewString(),
		Viewer:  viewer,
		Subject: subject,
		Name:    name,
	}, nil
}
