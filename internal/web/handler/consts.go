package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// AdminPath groups every admin area route.
	AdminPath = RootPath + "admin"

	// RolesPath is the base path of role management.
	RolesPath = AdminPath + "/roles"

	// DefaultActorHeader carries the id of the acting role.
	DefaultActorHeader = "X-Actor-Role-Id"

	// ErrNilACDFatalLogMsg is used if app or cfg or dependencies are nil.
	ErrNilACDFatalLogMsg = "app, cfg or dependencies are nil"
)
