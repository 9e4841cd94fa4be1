package rbac

import "time"

// User is the persisted account record. Roles is a many-to-many association
// through user_roles; membership is a set, duplicate pairs are rejected by
// the composite primary key on the join table.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Email        *string   `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`

	Roles []Role `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// Role groups permissions for coarse assignment to users.
type Role struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`

	Users       []User       `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE"`
	Permissions []Permission `gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE"`
}

func (Role) TableName() string {
	return "roles"
}

// Permission is a leaf entity named by the resource:action convention,
// e.g. "user:read".
type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`

	Roles []Role `gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE"`
}

func (Permission) TableName() string {
	return "permissions"
}

// PermissionLog records the outcome of a guard policy evaluation. Written
// asynchronously by the audit recorder; never consulted on the request path.
type PermissionLog struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null"`
	PermissionID int64     `gorm:"column:permission_id;not null"`
	Action       string    `gorm:"column:action;not null"`
	Timestamp    time.Time `gorm:"column:timestamp"`
}

func (PermissionLog) TableName() string {
	return "permission_logs"
}
