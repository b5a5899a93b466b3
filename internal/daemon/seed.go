package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// defaultRoles are created in order, each inheriting the one before it.
var defaultRoles = []struct { //nolint:gochecknoglobals
	name        string
	description string
}{
	{"Viewer", "Read access"},
	{"Editor", "Viewer plus write access"},
	{"Administrator", "Editor plus role management"},
}

// seed creates the default role chain if the roles table is empty.
func seed(b *Backend) error {
	var count int64
	if err := b.DB.Model(&models.Role{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count roles")
	}

	if count > 0 {
		return nil
	}

	ctx := context.Background()

	var grants []string

	for _, r := range defaultRoles {
		rec, err := b.Engine.CreateRole(ctx, roles.NewAttributes(r.name, r.description), grants)
		if err != nil {
			return errors.Wrapf(err, "seed role %s", r.name)
		}

		log.Info().Str("role_name", rec.Name).Str("uuid", rec.UUID).Msg("seeded default role")

		grants = []string{rec.UUID}
	}

	return nil
}
