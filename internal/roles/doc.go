// Package roles holds the pieces of the role domain shared by the hierarchy engine,
// the store and the HTTP layer: the error taxonomy, the typed attribute update record
// and the acting principal carried in the request context.
package roles
