// Package hierarchy implements the role hierarchy engine.
//
// Roles form a directed acyclic graph of grant edges: an edge A -> B means A inherits
// everything B grants. The engine computes transitive closures over that graph in both
// directions and performs every mutation (grant, revoke, reconcile, attribute writes)
// inside a single store transaction, with the participating roles locked, so that the
// cycle check and the edge insert can not be interleaved with a concurrent grant.
//
// Persistence is reached only through the Store interface. The gorm implementation
// lives in internal/db/controller/role.
//
// Example usage:
//
//	engine := hierarchy.New(rolestore.New(db))
//
//	// Admin inherits Editor
//	err := engine.Grant(ctx, roles.ByName("Admin"), roles.ByName("Editor"))
//
//	// everything Admin inherits, directly or not
//	ids, err := engine.TransitiveGrants(ctx, roles.ByName("Admin"))
package hierarchy
