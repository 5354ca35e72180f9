// Package identity re-derives the operator's role from the authoritative
// remote provider at session start.
//
// The locally cached role is a display convenience only. Access-control
// decisions must use the role returned by RefreshSession, never a field
// read back from the store - a device left offline could otherwise keep
// privileges the server has since revoked.
package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jitheswar/ruralAi/internal/model"
	"github.com/Jitheswar/ruralAi/internal/store"
)

// RoleProvider supplies the authoritative role for a user id
// (external collaborator, typically the cloud identity service).
type RoleProvider interface {
	Role(ctx context.Context, userID string) (model.Role, error)
}

// RefreshSession fetches the authoritative role for userID, updates the
// cached profile row, and returns the fetched role.
//
// The returned role - not the cached row - is what callers must use for
// access decisions this session. When the provider is unreachable the
// session cannot be established; offline mode never grants role-gated
// access on cached data.
func RefreshSession(ctx context.Context, s *store.Store, provider RoleProvider, userID string) (model.Role, error) {
	role, err := provider.Role(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("refresh session: fetch role: %w", err)
	}
	if !model.ValidRoles[role] {
		return "", fmt.Errorf("refresh session: provider returned unknown role %q", role)
	}

	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("refresh session: %w", err)
	}
	if u.Role != role {
		slog.Info("cached role out of date, updating",
			"user_id", userID,
			"cached", string(u.Role),
			"authoritative", string(role),
		)
		u.Role = role
		if _, err := s.SaveUser(ctx, u); err != nil {
			return "", fmt.Errorf("refresh session: %w", err)
		}
	}

	return role, nil
}
