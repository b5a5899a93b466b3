package models

import "time"

// Meta correlates a surrogate object id of a given class with its external UUID
// and carries the audit columns shared by all managed objects.
type Meta struct {
	// ObjectUUID is the globally unique external identifier.
	ObjectUUID string `gorm:"column:meta_object_uuid;primaryKey;size:36"`
	// ClassName identifies the object class, e.g. RoleClass.
	ClassName string `gorm:"column:meta_class_name;size:100;not null;uniqueIndex:idx_meta_class_object"`
	// ObjectID is the surrogate id of the object within its class.
	ObjectID uint `gorm:"column:meta_object_id;not null;uniqueIndex:idx_meta_class_object"`
	// CreatedAt is the creation time.
	CreatedAt time.Time `gorm:"column:meta_object_create_time"`
	// UpdatedAt is the time of the last update.
	UpdatedAt time.Time `gorm:"column:meta_object_last_update_time"`
	// CreatedBy is the id of the role that created the object, 0 if unknown.
	CreatedBy uint `gorm:"column:meta_object_create_role_id"`
	// UpdatedBy is the id of the role that last updated the object, 0 if unknown.
	UpdatedBy uint `gorm:"column:meta_object_last_update_role_id"`
}

// TableName specifies the database table name for the Meta model.
func (Meta) TableName() string {
	return "object_meta"
}
