package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// Actor stores the acting role id from header in the request context.
// Authentication happens in front of this service; a missing header means an unknown actor.
func Actor(header string) fiber.Handler {
	if header == "" {
		header = DefaultActorHeader
	}

	return func(c fiber.Ctx) error {
		raw := c.Get(header)
		if raw == "" {
			return c.Next()
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return errors.Wrapf(roles.ErrValidation, "header %s must carry a positive role id", header)
		}

		c.SetContext(roles.WithActor(c.Context(), uint(id)))

		return c.Next()
	}
}
