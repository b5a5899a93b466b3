package models

import (
	"time"

	"github.com/GoPowerDNS-Admin/GoRoles-Admin/internal/roles"
)

// RoleClass is the meta class name under which roles are registered in object_meta.
const RoleClass = "role"

// Role represents a node in the role hierarchy.
// System roles are managed through the admin area. User roles are created implicitly
// together with a user account and are only reachable here by id or uuid.
type Role struct {
	// ID is the surrogate key, immutable once assigned.
	ID uint `gorm:"column:role_id;primaryKey"`
	// Name is unique across all roles, user roles included.
	Name string `gorm:"column:role_name;unique;size:100;not null"`
	// Description is free text.
	Description string `gorm:"column:role_description;size:255"`
	// IsUserRole is set at user creation time and never changed afterwards.
	IsUserRole bool `gorm:"column:role_is_user;not null;default:false"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// SetAttributes applies the provided attributes to the role.
// Name collisions can only be detected by the store and are checked there.
func (r *Role) SetAttributes(attrs roles.Attributes) error {
	if err := attrs.Validate(); err != nil {
		return err
	}

	if attrs.Name != nil {
		r.Name = *attrs.Name
	}

	if attrs.Description != nil {
		r.Description = *attrs.Description
	}

	return nil
}

// RoleRecord is a role joined with its object_meta row.
type RoleRecord struct {
	ID          uint      `gorm:"column:role_id" json:"role_id"`
	UUID        string    `gorm:"column:meta_object_uuid" json:"meta_object_uuid"`
	Name        string    `gorm:"column:role_name" json:"role_name"`
	Description string    `gorm:"column:role_description" json:"role_description"`
	IsUserRole  bool      `gorm:"column:role_is_user" json:"role_is_user"`
	CreatedAt   time.Time `gorm:"column:meta_object_create_time" json:"meta_object_create_time"`
	UpdatedAt   time.Time `gorm:"column:meta_object_last_update_time" json:"meta_object_last_update_time"`
	CreatedBy   uint      `gorm:"column:meta_object_create_role_id" json:"meta_object_create_role_id"`
	UpdatedBy   uint      `gorm:"column:meta_object_last_update_role_id" json:"meta_object_last_update_role_id"`
}

// Role returns the plain role part of the record.
func (r RoleRecord) Role() Role {
	return Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsUserRole:  r.IsUserRole,
	}
}
