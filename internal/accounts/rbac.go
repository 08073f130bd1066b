package accounts

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/audit"
	"github.com/mrlokans/hymnal/internal/entities"
)

// NamedInput creates a role or a permission.
type NamedInput struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

func (in NamedInput) clean() (string, *string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", nil, apperr.ValidationField("name", "must not be empty")
	}
	if len(name) > MaxRoleNameLength {
		return "", nil, apperr.ValidationField("name", fmt.Sprintf("must be at most %d characters", MaxRoleNameLength))
	}
	if in.Description != nil && len(*in.Description) > MaxDescriptionSize {
		return "", nil, apperr.ValidationField("description", fmt.Sprintf("must be at most %d characters", MaxDescriptionSize))
	}
	return name, in.Description, nil
}

func (s *Service) CreateRole(ctx context.Context, actor *entities.User, in NamedInput) (*entities.Role, error) {
	name, description, err := in.clean()
	if err != nil {
		return nil, err
	}

	role := &entities.Role{Name: name, Description: description}
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.rbac.WithTx(tx).CreateRole(ctx, role); err != nil {
			return apperr.FromDB(err, "role")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditCreateRole,
			Details:  fmt.Sprintf("Created role %s", role.Name),
			Metadata: map[string]any{"role_id": role.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *Service) CreatePermission(ctx context.Context, actor *entities.User, in NamedInput) (*entities.Permission, error) {
	name, description, err := in.clean()
	if err != nil {
		return nil, err
	}

	perm := &entities.Permission{Name: name, Description: description}
	err = s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.rbac.WithTx(tx).CreatePermission(ctx, perm); err != nil {
			return apperr.FromDB(err, "permission")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditCreatePermission,
			Details:  fmt.Sprintf("Created permission %s", perm.Name),
			Metadata: map[string]any{"permission_id": perm.ID},
		})
	})
	if err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *Service) ListRoles(ctx context.Context, skip, limit int) ([]entities.Role, error) {
	if limit <= 0 {
		limit = DefaultRoleLimit
	}
	roles, err := s.rbac.ListRoles(ctx, skip, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "role")
	}
	return roles, nil
}

func (s *Service) ListPermissions(ctx context.Context, skip, limit int) ([]entities.Permission, error) {
	if limit <= 0 {
		limit = DefaultRoleLimit
	}
	perms, err := s.rbac.ListPermissions(ctx, skip, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "permission")
	}
	return perms, nil
}

// RolesForUser lists the roles assigned to an active user.
func (s *Service) RolesForUser(ctx context.Context, userID uint) ([]entities.Role, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	roles, err := s.rbac.RolesForUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "role")
	}
	return roles, nil
}

// AssignRole links an active user to a role. An existing link is a
// conflict.
func (s *Service) AssignRole(ctx context.Context, actor *entities.User, userID, roleID uint) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := s.users.WithTx(tx).GetActiveByID(ctx, userID); err != nil {
			return apperr.FromDB(err, "user")
		}
		repo := s.rbac.WithTx(tx)
		if _, err := repo.GetRole(ctx, roleID); err != nil {
			return apperr.FromDB(err, "role")
		}
		if err := repo.AssignRole(ctx, userID, roleID); err != nil {
			if apperr.Is(apperr.FromDB(err, "role assignment"), apperr.KindConflict) {
				return apperr.Conflict("role already assigned to user")
			}
			return apperr.FromDB(err, "role assignment")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditAssignRole,
			Details:  fmt.Sprintf("Assigned role %d to user %d", roleID, userID),
			Metadata: map[string]any{"user_id": userID, "role_id": roleID},
		})
	})
}

func (s *Service) RevokeRole(ctx context.Context, actor *entities.User, userID, roleID uint) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		removed, err := s.rbac.WithTx(tx).RevokeRole(ctx, userID, roleID)
		if err != nil {
			return apperr.FromDB(err, "role assignment")
		}
		if !removed {
			return apperr.NotFound("role assignment")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditRevokeRole,
			Details:  fmt.Sprintf("Revoked role %d from user %d", roleID, userID),
			Metadata: map[string]any{"user_id": userID, "role_id": roleID},
		})
	})
}

// AssignPermission grants a permission to a role. An existing grant is a
// conflict.
func (s *Service) AssignPermission(ctx context.Context, actor *entities.User, roleID, permissionID uint) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.rbac.WithTx(tx)
		if _, err := repo.GetRole(ctx, roleID); err != nil {
			return apperr.FromDB(err, "role")
		}
		if _, err := repo.GetPermission(ctx, permissionID); err != nil {
			return apperr.FromDB(err, "permission")
		}
		if err := repo.AssignPermission(ctx, roleID, permissionID); err != nil {
			if apperr.Is(apperr.FromDB(err, "permission grant"), apperr.KindConflict) {
				return apperr.Conflict("permission already assigned to role")
			}
			return apperr.FromDB(err, "permission grant")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditAssignPermission,
			Details:  fmt.Sprintf("Assigned permission %d to role %d", permissionID, roleID),
			Metadata: map[string]any{"role_id": roleID, "permission_id": permissionID},
		})
	})
}

func (s *Service) RevokePermission(ctx context.Context, actor *entities.User, roleID, permissionID uint) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		removed, err := s.rbac.WithTx(tx).RevokePermission(ctx, roleID, permissionID)
		if err != nil {
			return apperr.FromDB(err, "permission grant")
		}
		if !removed {
			return apperr.NotFound("permission grant")
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ActorID:  audit.ActorID(actor),
			Action:   entities.AuditRevokePermission,
			Details:  fmt.Sprintf("Revoked permission %d from role %d", permissionID, roleID),
			Metadata: map[string]any{"role_id": roleID, "permission_id": permissionID},
		})
	})
}
