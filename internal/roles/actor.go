package roles

import "context"

type actorKey struct{}

// WithActor returns a context carrying the id of the role performing the operation.
// The id ends up in the created_by / updated_by audit columns.
func WithActor(ctx context.Context, roleID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, roleID)
}

// ActorFrom returns the acting role id, 0 when unknown.
func ActorFrom(ctx context.Context) uint {
	if id, ok := ctx.Value(actorKey{}).(uint); ok {
		return id
	}

	return 0
}
