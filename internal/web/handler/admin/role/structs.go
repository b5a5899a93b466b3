package role

import "github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/db/models"

// roleInput is the body of create and update requests. Absent fields are nil.
type roleInput struct {
	Name         *string   `json:"role_name"           validate:"omitempty,max=100"`
	Description  *string   `json:"role_description"    validate:"omitempty,max=255"`
	GrantedUUIDs *[]string `json:"granted_roles_uuids"`
}

// inheritedRole is a directly granted role in the view of a role.
type inheritedRole struct {
	Name string `json:"role_name"`
	UUID string `json:"meta_object_uuid"`
}

type roleView struct {
	*models.RoleRecord
	GrantedUUIDs             []string        `json:"granted_roles_uuids"`
	RecordProperties         []string        `json:"record_properties"`
	EditableRecordProperties []string        `json:"editable_record_properties"`
	InheritedRoles           []inheritedRole `json:"inherited_roles"`
}

type grantsView struct {
	RoleID      uint   `json:"role_id"`
	UUID        string `json:"meta_object_uuid"`
	Inherits    []uint `json:"inherits_role_ids"`
	InheritedBy []uint `json:"inherited_by_role_ids"`
}

type listing struct {
	ListingColumns           []string `json:"listing_columns"`
	RecordProperties         []string `json:"record_properties"`
	EditableRecordProperties []string `json:"editable_record_properties"`
	Data                     any      `json:"data"`
	TotalItems               int64    `json:"totalItems"`
	NumPages                 int64    `json:"numPages"`
}
