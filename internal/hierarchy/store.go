package hierarchy

import (
	"context"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"
	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// EdgeStore is the persistent adjacency relation of the hierarchy.
type EdgeStore interface {
	// AddEdge stores from -> to. It fails with roles.ErrDuplicateEdge if the edge exists,
	// roles.ErrCycle for a self edge and roles.ErrNotFound if an endpoint is missing.
	// Transitive cycles are checked by the engine before the call.
	AddEdge(ctx context.Context, from, to uint) error
	// RemoveEdge deletes from -> to. Removing an absent edge is not an error.
	RemoveEdge(ctx context.Context, from, to uint) error
	// DirectGrantsOf returns the distinct roles directly granted to any of ids.
	DirectGrantsOf(ctx context.Context, ids ...uint) ([]uint, error)
	// DirectGranteesOf returns the distinct roles directly granting any of ids.
	DirectGranteesOf(ctx context.Context, ids ...uint) ([]uint, error)
}

// RoleStore gives access to the role records the hierarchy refers to.
type RoleStore interface {
	// FindRole resolves a reference or fails with roles.ErrNotFound.
	FindRole(ctx context.Context, ref roles.Ref) (*models.RoleRecord, error)
	// FindRoles returns the records of ids ordered by id. Unknown ids are skipped.
	FindRoles(ctx context.Context, ids []uint) ([]models.RoleRecord, error)
	// FindRolesByUUID returns the records of uuids. Unknown uuids are skipped.
	FindRolesByUUID(ctx context.Context, uuids []string) ([]models.RoleRecord, error)
	// CreateRole inserts a role together with its meta row and returns the stored record.
	CreateRole(ctx context.Context, role *models.Role) (*models.RoleRecord, error)
	// UpdateRole writes name and description of an existing role and touches its meta row.
	UpdateRole(ctx context.Context, role *models.Role) error
	// LockRoles takes row locks on ids for the rest of the transaction.
	LockRoles(ctx context.Context, ids ...uint) error
}

// Store is everything the engine needs from persistence.
type Store interface {
	EdgeStore
	RoleStore
	// Transaction runs fn in a transaction bound store. The transaction commits when fn
	// returns nil and rolls back on any error or panic.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
