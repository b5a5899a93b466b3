package roles

import (
	"errors"
)

// Sentinel errors. Every failure surfaced by the store, the engine or the query service
// wraps exactly one of these, so callers can tell the kind apart with errors.Is.
var (
	// ErrNotFound is returned when a role id, uuid or name does not resolve.
	ErrNotFound = errors.New("roles: not found")

	// ErrValidation is returned for duplicate names, empty required fields and malformed input.
	ErrValidation = errors.New("roles: validation failed")

	// ErrInvalidFilter is returned when a search contains an unsupported key or sort field.
	ErrInvalidFilter = errors.New("roles: invalid filter")

	// ErrCycle is returned when a grant would make a role inherit itself.
	ErrCycle = errors.New("roles: grant would create a cycle")

	// ErrDuplicateEdge is returned by the store when the grant edge already exists.
	ErrDuplicateEdge = errors.New("roles: grant already exists")

	// ErrTransientStore is returned on lock timeouts and deadlocks. The whole operation may be retried.
	ErrTransientStore = errors.New("roles: transient store error")

	// ErrConflict is returned when a concurrent modification is detected at commit.
	ErrConflict = errors.New("roles: concurrent modification")

	// ErrNotImplemented is returned for operations that are not provided, e.g. deleting a role.
	ErrNotImplemented = errors.New("roles: not implemented")
)

// Kind names an error category in responses and logs.
type Kind string

// Error kinds, in the order KindOf checks them.
const (
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation"
	KindInvalidFilter  Kind = "invalid_filter"
	KindCycle          Kind = "cycle"
	KindDuplicateEdge  Kind = "duplicate_edge"
	KindTransient      Kind = "transient"
	KindConflict       Kind = "conflict"
	KindNotImplemented Kind = "not_implemented"
	KindInternal       Kind = "internal"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrInvalidFilter, KindInvalidFilter},
	{ErrValidation, KindValidation},
	{ErrCycle, KindCycle},
	{ErrDuplicateEdge, KindDuplicateEdge},
	{ErrTransientStore, KindTransient},
	{ErrConflict, KindConflict},
	{ErrNotImplemented, KindNotImplemented},
}

// KindOf returns the kind of err, or KindInternal when err wraps none of the sentinels.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}

	return KindInternal
}

// IsRetryable reports whether the caller may safely retry the whole operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}
