package roles

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Ref identifies a role by exactly one of id, uuid or name.
type Ref struct {
	ID   uint
	UUID string
	Name string
}

// ByID references a role by surrogate id.
func ByID(id uint) Ref { return Ref{ID: id} }

// ByUUID references a role by external uuid.
func ByUUID(u string) Ref { return Ref{UUID: u} }

// ByName references a role by its unique name.
func ByName(name string) Ref { return Ref{Name: name} }

// ParseRef interprets a path parameter: a positive integer is an id, anything else must be a uuid.
func ParseRef(s string) (Ref, error) {
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		if id == 0 {
			return Ref{}, errors.Wrap(ErrValidation, "role id must be positive")
		}

		return ByID(uint(id)), nil
	}

	if err := uuid.Validate(s); err != nil {
		return Ref{}, errors.Wrapf(ErrValidation, "%q is neither a role id nor a uuid", s)
	}

	return ByUUID(s), nil
}

// String implements fmt.Stringer.
func (r Ref) String() string {
	switch {
	case r.ID != 0:
		return fmt.Sprintf("role id %d", r.ID)
	case r.UUID != "":
		return "role uuid " + r.UUID
	default:
		return fmt.Sprintf("role name %q", r.Name)
	}
}
