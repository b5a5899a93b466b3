package rolequery

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// Filter keys accepted by ParseFilter.
const (
	KeyRoleID           = "role_id"
	KeyRoleUUID         = "role_uuid"
	KeyMetaObjectUUID   = "meta_object_uuid"
	KeyRoleName         = "role_name"
	KeyRoleDescription  = "role_description"
	KeyInheritsRoleUUID = "inherits_role_uuid"
	KeyInheritsRoleName = "inherits_role_name"
	KeyGrantedRoleUUID  = "granted_role_uuid"
	KeyGrantedRoleName  = "granted_role_name"
)

// Filter narrows a search. Every set field must match.
type Filter struct {
	// RoleID matches exactly.
	RoleID *uint
	// UUID, Name and Description match as substrings.
	UUID        *string
	Name        *string
	Description *string
	// Inherits keeps roles that inherit each referenced role directly or transitively.
	// A referenced role counts as inheriting itself.
	Inherits []roles.Ref
	// Granted keeps roles with a direct grant of each referenced role.
	Granted []roles.Ref
}

// Empty reports whether f matches every role.
func (f Filter) Empty() bool {
	return f.RoleID == nil && f.UUID == nil && f.Name == nil && f.Description == nil &&
		len(f.Inherits) == 0 && len(f.Granted) == 0
}

// ParseFilter builds a filter from a decoded JSON object. Null values are ignored.
// Unknown keys and values of the wrong type fail with roles.ErrInvalidFilter.
func ParseFilter(raw map[string]any) (Filter, error) {
	var f Filter

	// deterministic error messages for several bad keys
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		if value == nil {
			continue
		}

		if key == KeyRoleID {
			id, err := parseID(value)
			if err != nil {
				return Filter{}, err
			}

			f.RoleID = &id

			continue
		}

		s, ok := value.(string)
		if !ok {
			return Filter{}, errors.Wrapf(roles.ErrInvalidFilter, "%s must be a string, got %T", key, value)
		}

		if s == "" && isRoleReference(key) {
			return Filter{}, errors.Wrapf(roles.ErrInvalidFilter, "%s can not be empty", key)
		}

		switch key {
		case KeyRoleUUID, KeyMetaObjectUUID:
			f.UUID = &s
		case KeyRoleName:
			f.Name = &s
		case KeyRoleDescription:
			f.Description = &s
		case KeyInheritsRoleUUID:
			f.Inherits = append(f.Inherits, roles.ByUUID(s))
		case KeyInheritsRoleName:
			f.Inherits = append(f.Inherits, roles.ByName(s))
		case KeyGrantedRoleUUID:
			f.Granted = append(f.Granted, roles.ByUUID(s))
		case KeyGrantedRoleName:
			f.Granted = append(f.Granted, roles.ByName(s))
		default:
			return Filter{}, errors.Wrapf(roles.ErrInvalidFilter, "unknown filter key %q", key)
		}
	}

	return f, nil
}

func isRoleReference(key string) bool {
	switch key {
	case KeyInheritsRoleUUID, KeyInheritsRoleName, KeyGrantedRoleUUID, KeyGrantedRoleName:
		return true
	}

	return false
}

func parseID(value any) (uint, error) {
	invalid := func() (uint, error) {
		return 0, errors.Wrapf(roles.ErrInvalidFilter, "role_id must be a positive integer, got %v", value)
	}

	switch v := value.(type) {
	case float64:
		if v < 1 || v != math.Trunc(v) || v > math.MaxUint32 {
			return invalid()
		}

		return uint(v), nil
	case int:
		if v < 1 {
			return invalid()
		}

		return uint(v), nil
	case uint:
		if v == 0 {
			return invalid()
		}

		return v, nil
	case json.Number, string:
		id, err := strconv.ParseUint(fmt.Sprint(v), 10, 64)
		if err != nil || id == 0 {
			return invalid()
		}

		return uint(id), nil
	default:
		return invalid()
	}
}
