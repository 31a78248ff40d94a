package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dangmn/chatline/internal/domain"
)

// UnknownName is the sentinel shown when neither an alias nor the
// subject's account can be found.
const UnknownName = "Unknown"

// Resolver answers "what name should viewer see for subject". It consults
// durable state on every call; aliases change rarely and lookups are cheap
// next to the network hop, so there is no cache to invalidate.
type Resolver struct {
	aliases AliasSource
	users   UserSource
}

func NewResolver(aliases AliasSource, users UserSource) *Resolver {
	return &Resolver{aliases: aliases, users: users}
}

// DisplayName resolves viewer's alias for subject, falling back to the
// subject's raw username, falling back to UnknownName.
func (r *Resolver) DisplayName(ctx context.Context, viewer, subject domain.UserID) string {
	name, found, err := r.aliases.AliasName(ctx, viewer, subject)
	if err != nil {
		log.Error().Err(err).Str("module", "core.resolver").Str("viewer", string(viewer)).Str("subject", string(subject)).Msg("alias lookup failed")
	}
	if found {
		return name
	}
	user, err := r.users.UserByID(ctx, subject)
	if err != nil || user == nil {
		return UnknownName
	}
	return user.Username
}
