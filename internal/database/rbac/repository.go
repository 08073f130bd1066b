// Package rbac provides database operations for roles, permissions and
// their assignments.
package rbac

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/hymnal/internal/entities"
)

// Repository handles role and permission persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new RBAC repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateRole(ctx context.Context, role *entities.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *Repository) GetRole(ctx context.Context, id uint) (*entities.Role, error) {
	var role entities.Role
	if err := r.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *Repository) ListRoles(ctx context.Context, skip, limit int) ([]entities.Role, error) {
	var roles []entities.Role
	err := r.db.WithContext(ctx).Order("name ASC").Offset(skip).Limit(limit).Find(&roles).Error
	return roles, err
}

func (r *Repository) CreatePermission(ctx context.Context, perm *entities.Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

func (r *Repository) GetPermission(ctx context.Context, id uint) (*entities.Permission, error) {
	var perm entities.Permission
	if err := r.db.WithContext(ctx).First(&perm, id).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *Repository) ListPermissions(ctx context.Context, skip, limit int) ([]entities.Permission, error) {
	var perms []entities.Permission
	err := r.db.WithContext(ctx).Order("name ASC").Offset(skip).Limit(limit).Find(&perms).Error
	return perms, err
}

// AssignRole links a user to a role. A duplicate pair fails with
// gorm.ErrDuplicatedKey.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID uint) error {
	return r.db.WithContext(ctx).Create(&entities.UserRole{UserID: userID, RoleID: roleID}).Error
}

// RevokeRole removes the link and reports whether it existed.
func (r *Repository) RevokeRole(ctx context.Context, userID, roleID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&entities.UserRole{})
	return result.RowsAffected > 0, result.Error
}

// AssignPermission grants a permission to a role. A duplicate pair fails
// with gorm.ErrDuplicatedKey.
func (r *Repository) AssignPermission(ctx context.Context, roleID, permissionID uint) error {
	return r.db.WithContext(ctx).Create(&entities.RolePermission{RoleID: roleID, PermissionID: permissionID}).Error
}

// RevokePermission removes the grant and reports whether it existed.
func (r *Repository) RevokePermission(ctx context.Context, roleID, permissionID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&entities.RolePermission{})
	return result.RowsAffected > 0, result.Error
}

// RolesForUser returns the roles assigned to a user.
func (r *Repository) RolesForUser(ctx context.Context, userID uint) ([]entities.Role, error) {
	var roles []entities.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Find(&roles).Error
	return roles, err
}

// HasPermission reports whether a path user -> role -> permission exists for
// the named permission.
func (r *Repository) HasPermission(ctx context.Context, userID uint, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ? AND permissions.name = ?", userID, name).
		Count(&count).Error
	return count > 0, err
}

// SeedPermissions inserts any permission names that are not present yet.
func (r *Repository) SeedPermissions(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	perms := make([]entities.Permission, 0, len(names))
	for _, name := range names {
		perms = append(perms, entities.Permission{Name: name})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&perms).Error
}
