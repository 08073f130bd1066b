package entities

import "time"

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword string     `gorm:"size:255;not null" json:"-"`
	FirstName      string     `gorm:"size:100" json:"first_name"`
	LastName       string     `gorm:"size:100" json:"last_name"`
	OtherName      string     `gorm:"size:100" json:"other_name,omitempty"`
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	IsStaff        bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser    bool       `gorm:"not null;default:false" json:"is_superuser"`
	TOTPSecret     *string    `gorm:"size:64" json:"-"`
	TOTPEnabled    bool       `gorm:"not null;default:false" json:"totp_enabled"`
	ImagePath      *string    `gorm:"size:1024" json:"image_path"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DeletePolicy marks users as soft-deleted only. The admin flow never removes
// a user row.
func (User) DeletePolicy() DeletePolicy { return SoftDelete }

func (u *User) MarkDeleted(at time.Time) {
	u.IsActive = false
	u.DeletedAt = &at
}

func (u *User) IsDeleted() bool {
	return !u.IsActive || u.DeletedAt != nil
}

// IsElevated reports whether the user holds a staff or superuser flag.
func (u *User) IsElevated() bool {
	return u.IsStaff || u.IsSuperuser
}

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description *string   `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

func (Role) DeletePolicy() DeletePolicy { return HardDelete }

type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description *string   `gorm:"size:500" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

func (Permission) DeletePolicy() DeletePolicy { return HardDelete }

// UserRole assigns a role to a user.
type UserRole struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	RoleID    uint      `gorm:"primaryKey;index" json:"role_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Role      *Role     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

func (UserRole) DeletePolicy() DeletePolicy { return HardDelete }

// RolePermission grants a permission to a role.
type RolePermission struct {
	RoleID       uint        `gorm:"primaryKey" json:"role_id"`
	PermissionID uint        `gorm:"primaryKey;index" json:"permission_id"`
	Role         *Role       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Permission   *Permission `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

func (RolePermission) DeletePolicy() DeletePolicy { return HardDelete }
