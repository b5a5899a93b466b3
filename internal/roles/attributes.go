package roles

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	// MaxNameLength is the upper bound of a role name.
	MaxNameLength = 100
	// MaxDescriptionLength is the upper bound of a role description.
	MaxDescriptionLength = 255
)

var validate = validator.New()

// Attributes is the set of role properties that can be written through role management.
// A nil field is left untouched. The user-role flag is not an attribute.
type Attributes struct {
	Name        *string `validate:"omitempty,max=100"`
	Description *string `validate:"omitempty,max=255"`
}

// Validate checks the provided fields. A provided name must not be blank.
func (a Attributes) Validate() error {
	if a.Name != nil && strings.TrimSpace(*a.Name) == "" {
		return errors.Wrap(ErrValidation, "role name can not be empty")
	}

	if err := validate.Struct(a); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			return errors.Wrapf(ErrValidation, "field %s failed on %s", vErrs[0].Field(), vErrs[0].Tag())
		}

		return errors.Wrap(ErrValidation, err.Error())
	}

	return nil
}

// Empty reports whether no field is provided.
func (a Attributes) Empty() bool {
	return a.Name == nil && a.Description == nil
}

// NewAttributes is a shortcut for setting both name and description.
func NewAttributes(name, description string) Attributes {
	return Attributes{Name: &name, Description: &description}
}
