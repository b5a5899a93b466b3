package hierarchy

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

const (
	opGrant     = "grant"
	opRevoke    = "revoke"
	opReconcile = "reconcile"
	opCreate    = "create"
	opUpdate    = "update"
)

// Engine performs transitive reasoning over the grant edges and every mutation of them.
// It holds no state besides the store and is safe for concurrent use.
type Engine struct {
	store Store
}

// New creates an engine on top of store.
func New(store Store) *Engine {
	if store == nil {
		panic("hierarchy store can not be nil")
	}

	return &Engine{store: store}
}

// Role resolves a role reference.
func (e *Engine) Role(ctx context.Context, ref roles.Ref) (*models.RoleRecord, error) {
	return e.store.FindRole(ctx, ref)
}

// DirectGrants returns the roles directly granted to ref, ordered by id.
func (e *Engine) DirectGrants(ctx context.Context, ref roles.Ref) ([]models.RoleRecord, error) {
	role, err := e.store.FindRole(ctx, ref)
	if err != nil {
		return nil, err
	}

	ids, err := e.store.DirectGrantsOf(ctx, role.ID)
	if err != nil {
		return nil, err
	}

	return e.store.FindRoles(ctx, ids)
}

// TransitiveGrants returns the ids of all roles ref inherits, directly or indirectly,
// in ascending order. The role itself is never part of the result.
func (e *Engine) TransitiveGrants(ctx context.Context, ref roles.Ref) ([]uint, error) {
	role, err := e.store.FindRole(ctx, ref)
	if err != nil {
		return nil, err
	}

	return walk(ctx, role.ID, e.store.DirectGrantsOf)
}

// TransitiveGrantees returns the ids of all roles that inherit ref, directly or
// indirectly, in ascending order. The role itself is never part of the result.
func (e *Engine) TransitiveGrantees(ctx context.Context, ref roles.Ref) ([]uint, error) {
	role, err := e.store.FindRole(ctx, ref)
	if err != nil {
		return nil, err
	}

	return walk(ctx, role.ID, e.store.DirectGranteesOf)
}

// Grant makes ref inherit target. Granting an already granted role is a no-op.
// It fails with roles.ErrCycle when target is ref or already inherits ref, in which case
// the edge set is left unchanged.
func (e *Engine) Grant(ctx context.Context, ref, target roles.Ref) error {
	err := e.store.Transaction(ctx, func(tx Store) error {
		role, granted, err := resolvePair(ctx, tx, ref, target)
		if err != nil {
			return err
		}

		if err = tx.LockRoles(ctx, role.ID, granted.ID); err != nil {
			return err
		}

		return grant(ctx, tx, role.ID, granted.ID)
	})

	observe(opGrant, err)

	return err
}

// Revoke removes the grant ref -> target. Revoking an absent grant is a no-op.
func (e *Engine) Revoke(ctx context.Context, ref, target roles.Ref) error {
	err := e.store.Transaction(ctx, func(tx Store) error {
		role, granted, err := resolvePair(ctx, tx, ref, target)
		if err != nil {
			return err
		}

		if err = tx.LockRoles(ctx, role.ID, granted.ID); err != nil {
			return err
		}

		log.Debug().Uint("role_id", role.ID).Uint("inherited_role_id", granted.ID).Msg("revoke role")

		return tx.RemoveEdge(ctx, role.ID, granted.ID)
	})

	observe(opRevoke, err)

	return err
}

// Reconcile makes the direct grants of ref exactly the roles identified by desired.
// Grants that are no longer desired are revoked before new ones are added, so swapping
// parts of a hierarchy around does not trip the cycle check on a transient state.
// Either every edge change commits or none does.
func (e *Engine) Reconcile(ctx context.Context, ref roles.Ref, desired []string) error {
	err := e.store.Transaction(ctx, func(tx Store) error {
		role, err := tx.FindRole(ctx, ref)
		if err != nil {
			return err
		}

		return reconcile(ctx, tx, role.ID, desired)
	})

	observe(opReconcile, err)

	return err
}

// CreateRole stores a new system role with the given attributes and direct grants.
// The name is required.
func (e *Engine) CreateRole(ctx context.Context, attrs roles.Attributes, grants []string) (*models.RoleRecord, error) {
	if attrs.Name == nil {
		err := errors.Wrap(roles.ErrValidation, "role name is required")
		observe(opCreate, err)

		return nil, err
	}

	var created *models.RoleRecord

	err := e.store.Transaction(ctx, func(tx Store) error {
		role := &models.Role{}
		if err := role.SetAttributes(attrs); err != nil {
			return err
		}

		rec, err := tx.CreateRole(ctx, role)
		if err != nil {
			return err
		}

		if len(grants) > 0 {
			if err = reconcile(ctx, tx, rec.ID, grants); err != nil {
				return err
			}
		}

		created = rec

		return nil
	})
	if err != nil {
		created = nil
	}

	observe(opCreate, err)

	return created, err
}

// UpdateRole writes the provided attributes of ref and, when grants is not nil, replaces
// its direct grants by the roles identified in grants (an empty slice revokes all).
// Attributes and edges commit together or not at all.
// User roles are managed together with their user and can not be renamed here.
func (e *Engine) UpdateRole(
	ctx context.Context,
	ref roles.Ref,
	attrs roles.Attributes,
	grants []string,
) (*models.RoleRecord, error) {
	var updated *models.RoleRecord

	err := e.store.Transaction(ctx, func(tx Store) error {
		rec, err := tx.FindRole(ctx, ref)
		if err != nil {
			return err
		}

		if err = tx.LockRoles(ctx, rec.ID); err != nil {
			return err
		}

		if !attrs.Empty() {
			if rec.IsUserRole {
				return errors.Wrapf(roles.ErrValidation, "%s is a user role", ref)
			}

			role := rec.Role()
			if err = role.SetAttributes(attrs); err != nil {
				return err
			}

			if err = tx.UpdateRole(ctx, &role); err != nil {
				return err
			}
		}

		if grants != nil {
			if err = reconcile(ctx, tx, rec.ID, grants); err != nil {
				return err
			}
		}

		updated, err = tx.FindRole(ctx, roles.ByID(rec.ID))

		return err
	})
	if err != nil {
		updated = nil
	}

	observe(opUpdate, err)

	return updated, err
}

func resolvePair(ctx context.Context, tx Store, ref, target roles.Ref) (*models.RoleRecord, *models.RoleRecord, error) {
	role, err := tx.FindRole(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	granted, err := tx.FindRole(ctx, target)
	if err != nil {
		return nil, nil, err
	}

	return role, granted, nil
}

// grant adds roleID -> targetID inside tx after the cycle check. Both rows must be locked.
func grant(ctx context.Context, tx Store, roleID, targetID uint) error {
	if roleID == targetID {
		return errors.Wrapf(roles.ErrCycle, "role %d can not be granted to itself", roleID)
	}

	current, err := tx.DirectGrantsOf(ctx, roleID)
	if err != nil {
		return err
	}

	for _, id := range current {
		if id == targetID {
			return nil
		}
	}

	cyclic, err := reaches(ctx, targetID, roleID, tx.DirectGrantsOf)
	if err != nil {
		return err
	}

	if cyclic {
		log.Debug().Uint("role_id", roleID).Uint("inherited_role_id", targetID).Msg("grant rejected, cycle")

		return errors.Wrapf(roles.ErrCycle, "role %d already inherits role %d", targetID, roleID)
	}

	log.Debug().Uint("role_id", roleID).Uint("inherited_role_id", targetID).Msg("grant role")

	return tx.AddEdge(ctx, roleID, targetID)
}

// reconcile replaces the direct grants of roleID inside tx.
func reconcile(ctx context.Context, tx Store, roleID uint, desired []string) error {
	wanted, err := resolveUUIDs(ctx, tx, desired)
	if err != nil {
		return err
	}

	current, err := tx.DirectGrantsOf(ctx, roleID)
	if err != nil {
		return err
	}

	lock := append([]uint{roleID}, current...)
	lock = append(lock, wanted...)

	if err = tx.LockRoles(ctx, lock...); err != nil {
		return err
	}

	keep := make(map[uint]struct{}, len(wanted))
	for _, id := range wanted {
		keep[id] = struct{}{}
	}

	have := make(map[uint]struct{}, len(current))

	for _, id := range current {
		have[id] = struct{}{}

		if _, ok := keep[id]; ok {
			continue
		}

		if err = tx.RemoveEdge(ctx, roleID, id); err != nil {
			return err
		}
	}

	for _, id := range wanted {
		if _, ok := have[id]; ok {
			continue
		}

		if err = grant(ctx, tx, roleID, id); err != nil {
			return err
		}
	}

	return nil
}

// resolveUUIDs maps uuids to ids in ascending order, collapsing duplicates.
// Any unknown uuid fails the whole resolution.
func resolveUUIDs(ctx context.Context, tx Store, uuids []string) ([]uint, error) {
	if len(uuids) == 0 {
		return nil, nil
	}

	unique := make(map[string]struct{}, len(uuids))
	for _, u := range uuids {
		unique[u] = struct{}{}
	}

	records, err := tx.FindRolesByUUID(ctx, uuids)
	if err != nil {
		return nil, err
	}

	if len(records) != len(unique) {
		found := make(map[string]struct{}, len(records))
		for i := range records {
			found[records[i].UUID] = struct{}{}
		}

		for _, u := range uuids {
			if _, ok := found[u]; !ok {
				return nil, errors.Wrapf(roles.ErrNotFound, "role uuid %s", u)
			}
		}
	}

	ids := make([]uint, 0, len(records))
	for i := range records {
		ids = append(ids, records[i].ID)
	}

	return sortedUnique(ids), nil
}
