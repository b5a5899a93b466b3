// Package role provides the admin handlers for viewing, editing and listing roles
// and for granting roles to each other.
package role

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/config"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/hierarchy"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/rolequery"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/middleware/auth"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/navigation"
)

// Service serves the role management routes.
type Service struct {
	handler.Service
	cfg       *config.Config
	engine    *hierarchy.Engine
	query     *rolequery.Service
	validator *validator.Validate
}

// Init registers the routes and the navigation entry.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps handler.Deps) error {
	if app == nil || cfg == nil || deps.Engine == nil || deps.Query == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.cfg = cfg
	s.engine = deps.Engine
	s.query = deps.Query
	s.validator = validator.New()

	if deps.Navigation != nil {
		err := deps.Navigation.Register(navigation.Entry{
			Section: navigation.SectionAdmin,
			Title:   NavTitle,
			Path:    handler.RolesPath,
			Icon:    NavIcon,
		})
		if err != nil {
			return errors.Wrap(err, "register roles navigation")
		}
	}

	// reads are open, changes need the manager role when one is configured
	guard := auth.RequireRole(s.engine, cfg.Roles.ManagerRole)

	app.Post(Path, guard, s.Create)
	app.Get(RouteRole, s.View)
	app.Put(RouteRole, guard, s.Update)
	app.Delete(RouteRole, guard, s.Remove)
	app.Post(RouteGrant, guard, s.Grant)
	app.Delete(RouteGrant, guard, s.Revoke)
	app.Get(RouteGrants, s.Grants)
	app.Get(RouteList, s.List)

	return nil
}

// Create stores a new system role with its direct grants.
func (s *Service) Create(c fiber.Ctx) error {
	in, err := s.bind(c)
	if err != nil {
		return err
	}

	if in.Name == nil {
		return errors.Wrap(roles.ErrValidation, "role_name is required")
	}

	var grants []string
	if in.GrantedUUIDs != nil {
		grants = *in.GrantedUUIDs
	}

	rec, err := s.engine.CreateRole(c.Context(), in.attributes(), grants)
	if err != nil {
		return err
	}

	log.Info().Uint("role_id", rec.ID).Str("role_name", rec.Name).Msg("role created")

	return handler.Created(c, rec, fmt.Sprintf(msgCreated, rec.Name, rec.UUID))
}

// View returns a role with its directly inherited roles.
func (s *Service) View(c fiber.Ctx) error {
	ref, err := roles.ParseRef(c.Params("id"))
	if err != nil {
		return err
	}

	rec, err := s.engine.Role(c.Context(), ref)
	if err != nil {
		return err
	}

	direct, err := s.engine.DirectGrants(c.Context(), roles.ByID(rec.ID))
	if err != nil {
		return err
	}

	view := roleView{
		RoleRecord:               rec,
		GrantedUUIDs:             make([]string, 0, len(direct)),
		RecordProperties:         RecordProperties,
		EditableRecordProperties: EditableRecordProperties,
		InheritedRoles:           make([]inheritedRole, 0, len(direct)),
	}

	for i := range direct {
		view.GrantedUUIDs = append(view.GrantedUUIDs, direct[i].UUID)
		view.InheritedRoles = append(view.InheritedRoles, inheritedRole{Name: direct[i].Name, UUID: direct[i].UUID})
	}

	return handler.OK(c, view, "")
}

// Update writes the provided attributes and, when granted_roles_uuids is present,
// replaces the direct grants.
func (s *Service) Update(c fiber.Ctx) error {
	ref, err := roles.ParseRef(c.Params("id"))
	if err != nil {
		return err
	}

	in, err := s.bind(c)
	if err != nil {
		return err
	}

	var grants []string
	if in.GrantedUUIDs != nil {
		grants = *in.GrantedUUIDs
		if grants == nil {
			grants = []string{}
		}
	}

	rec, err := s.engine.UpdateRole(c.Context(), ref, in.attributes(), grants)
	if err != nil {
		return err
	}

	log.Info().Uint("role_id", rec.ID).Str("role_name", rec.Name).Msg("role updated")

	return handler.OK(c, rec, fmt.Sprintf(msgUpdated, rec.Name, rec.UUID))
}

// Remove is not provided. Roles are only ever created and edited.
func (s *Service) Remove(c fiber.Ctx) error {
	return errors.Wrapf(roles.ErrNotImplemented, "deleting role %s", c.Params("id"))
}

// Grant makes the role id inherit the role target_id.
func (s *Service) Grant(c fiber.Ctx) error {
	role, target, err := s.pair(c)
	if err != nil {
		return err
	}

	if err = s.engine.Grant(c.Context(), roles.ByID(role.ID), roles.ByID(target.ID)); err != nil {
		return err
	}

	return handler.OK(c, nil, fmt.Sprintf(msgGranted, role.Name, target.Name))
}

// Revoke removes the grant of target_id from id.
func (s *Service) Revoke(c fiber.Ctx) error {
	role, target, err := s.pair(c)
	if err != nil {
		return err
	}

	if err = s.engine.Revoke(c.Context(), roles.ByID(role.ID), roles.ByID(target.ID)); err != nil {
		return err
	}

	return handler.OK(c, nil, fmt.Sprintf(msgRevoked, role.Name, target.Name))
}

// Grants returns every role the role inherits and every role inheriting it.
func (s *Service) Grants(c fiber.Ctx) error {
	ref, err := roles.ParseRef(c.Params("id"))
	if err != nil {
		return err
	}

	rec, err := s.engine.Role(c.Context(), ref)
	if err != nil {
		return err
	}

	inherits, err := s.engine.TransitiveGrants(c.Context(), roles.ByID(rec.ID))
	if err != nil {
		return err
	}

	inheritedBy, err := s.engine.TransitiveGrantees(c.Context(), roles.ByID(rec.ID))
	if err != nil {
		return err
	}

	return handler.OK(c, grantsView{
		RoleID:      rec.ID,
		UUID:        rec.UUID,
		Inherits:    nonNil(inherits),
		InheritedBy: nonNil(inheritedBy),
	}, "")
}

// bind decodes and validates the request body. Unknown fields are rejected.
func (s *Service) bind(c fiber.Ctx) (*roleInput, error) {
	in := &roleInput{}

	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()

	if err := dec.Decode(in); err != nil {
		return nil, errors.Wrapf(roles.ErrValidation, "request body: %v", err)
	}

	if err := s.validator.Struct(in); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			return nil, errors.Wrapf(roles.ErrValidation, "field %s failed on %s", vErrs[0].Field(), vErrs[0].Tag())
		}

		return nil, errors.Wrap(roles.ErrValidation, err.Error())
	}

	if in.GrantedUUIDs != nil {
		if err := s.validator.Var(*in.GrantedUUIDs, "dive,uuid"); err != nil {
			return nil, errors.Wrap(roles.ErrValidation, "granted_roles_uuids must only contain uuids")
		}
	}

	return in, nil
}

func (s *Service) pair(c fiber.Ctx) (role, target *roleRef, err error) {
	ref, err := roles.ParseRef(c.Params("id"))
	if err != nil {
		return nil, nil, err
	}

	targetRef, err := roles.ParseRef(c.Params("target_id"))
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.engine.Role(c.Context(), ref)
	if err != nil {
		return nil, nil, err
	}

	targetRec, err := s.engine.Role(c.Context(), targetRef)
	if err != nil {
		return nil, nil, err
	}

	return &roleRef{ID: rec.ID, Name: rec.Name}, &roleRef{ID: targetRec.ID, Name: targetRec.Name}, nil
}

type roleRef struct {
	ID   uint
	Name string
}

func (in *roleInput) attributes() roles.Attributes {
	return roles.Attributes{Name: in.Name, Description: in.Description}
}

func nonNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}

	return ids
}
