// Package auth guards routes by the role hierarchy of the acting role.
// Authentication happens in front of this service, the acting role id is taken from the request context.
package auth

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// Checker resolves roles and their inherited roles. *hierarchy.Engine implements it.
type Checker interface {
	Role(ctx context.Context, ref roles.Ref) (*models.RoleRecord, error)
	TransitiveGrants(ctx context.Context, ref roles.Ref) ([]uint, error)
}

// Inherits reports whether actorID is the role named required or inherits it.
// An unknown actor inherits nothing.
func Inherits(ctx context.Context, checker Checker, actorID uint, required string) (bool, error) {
	role, err := checker.Role(ctx, roles.ByName(required))
	if err != nil {
		return false, errors.Wrapf(err, "required role %q", required)
	}

	if role.ID == actorID {
		return true, nil
	}

	granted, err := checker.TransitiveGrants(ctx, roles.ByID(actorID))
	if errors.Is(err, roles.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return slices.Contains(granted, role.ID), nil
}

// RequireRole creates Fiber middleware that requires the acting role to be or inherit required.
// An empty required role disables the check.
func RequireRole(checker Checker, required string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if required == "" {
			return c.Next()
		}

		actor := roles.ActorFrom(c.Context())
		if actor == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "no acting role")
		}

		ok, err := Inherits(c.Context(), checker, actor, required)
		if err != nil {
			return err
		}

		if !ok {
			log.Warn().Uint("actor", actor).Str("required_role", required).Str("path", c.Path()).
				Msg("acting role lacks required role")

			return fiber.NewError(fiber.StatusForbidden, "acting role does not inherit "+required)
		}

		return c.Next()
	}
}
