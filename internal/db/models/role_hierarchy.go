package models

// RoleHierarchy is a grant edge: RoleID inherits the permissions of InheritedRoleID.
// The pair is the primary key, so duplicate edges are impossible at the storage level.
// Self edges and cycles are rejected before insert.
type RoleHierarchy struct {
	// RoleID is the receiving role.
	RoleID uint `gorm:"column:role_id;primaryKey;autoIncrement:false"`
	// InheritedRoleID is the granted role.
	InheritedRoleID uint `gorm:"column:inherited_role_id;primaryKey;autoIncrement:false;index"`
	// Role is the receiving role (enforced with a foreign key constraint).
	Role Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:CASCADE"`
	// InheritedRole is the granted role (enforced with a foreign key constraint).
	InheritedRole Role `gorm:"foreignKey:InheritedRoleID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for the RoleHierarchy model.
func (RoleHierarchy) TableName() string {
	return "roles_hierarchy"
}
