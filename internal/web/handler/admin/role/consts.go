package role

import "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/web/handler"

const (
	// Path is the base path for a single role.
	Path = handler.RolesPath + "/role"

	// RouteRole addresses a role by id or uuid.
	RouteRole = Path + "/:id"
	// RouteGrant addresses the grant of target_id to id.
	RouteGrant = RouteRole + "/role/:target_id"
	// RouteGrants returns the transitive grants and grantees of a role.
	RouteGrants = RouteRole + "/grants"
	// RouteList is the paginated listing of system roles.
	RouteList = handler.RolesPath + "/:page/:limit/:search/:sort_by/:sort"

	// ParamNone marks an omitted listing parameter.
	ParamNone = "none"

	// NavTitle is the title of the navigation entry.
	NavTitle = "Roles"
	// NavIcon is the icon of the navigation entry.
	NavIcon = "bi-diagram-3"

	msgCreated = "The role %s was created with UUID %s."
	msgUpdated = "The role %s with UUID %s was updated."
	msgGranted = "The role %s was granted role %s."
	msgRevoked = "The role %s was revoked role %s."
)

var (
	// ListingColumns are the columns shown in the roles listing.
	ListingColumns = []string{ //nolint:gochecknoglobals
		"role_id",
		"role_name",
		"role_is_user",
		"meta_object_uuid",
		"granted_roles_names",
	}

	// RecordProperties are the properties shown for a single role.
	RecordProperties = []string{ //nolint:gochecknoglobals
		"role_id",
		"role_name",
		"role_description",
		"meta_object_uuid",
		"granted_roles_uuids",
	}

	// EditableRecordProperties is the subset of RecordProperties a client may write.
	EditableRecordProperties = []string{ //nolint:gochecknoglobals
		"role_name",
		"role_description",
		"granted_roles_uuids",
	}
)
