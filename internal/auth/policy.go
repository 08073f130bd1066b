package auth

import (
	"context"
	"fmt"

	"github.com/mrlokans/hymnal/internal/config"
	"github.com/mrlokans/hymnal/internal/entities"
)

// Action names a gated operation. Under the RBAC policy it is also the name
// of the permission that grants it.
type Action string

const (
	ActionCreateUser Action = "create_user"
	ActionReadUser   Action = "read_user"
	ActionUpdateUser Action = "update_user"
	ActionDeleteUser Action = "delete_user"

	ActionSetup2FA  Action = "setup_2fa"
	ActionVerify2FA Action = "verify_2fa"

	ActionCreateRole       Action = "create_role"
	ActionCreatePermission Action = "create_permission"
	ActionAssignRole       Action = "assign_role"
	ActionAssignPermission Action = "assign_permission"
	ActionReadRole         Action = "read_role"

	ActionCreateHymnBook Action = "create_hymn_book"
	ActionUpdateHymnBook Action = "update_hymn_book"
	ActionDeleteHymnBook Action = "delete_hymn_book"

	ActionCreateHymn Action = "create_hymn"
	ActionUpdateHymn Action = "update_hymn"
	ActionDeleteHymn Action = "delete_hymn"

	ActionCreateMapping Action = "create_mapping"
	ActionUpdateMapping Action = "update_mapping"
	ActionDeleteMapping Action = "delete_mapping"

	ActionReadAuditLog    Action = "read_audit_log"
	ActionCleanupAuditLog Action = "cleanup_audit_log"
)

// AllActions lists every action, in the order permissions are seeded.
func AllActions() []Action {
	return []Action{
		ActionCreateUser, ActionReadUser, ActionUpdateUser, ActionDeleteUser,
		ActionSetup2FA, ActionVerify2FA,
		ActionCreateRole, ActionCreatePermission, ActionAssignRole, ActionAssignPermission, ActionReadRole,
		ActionCreateHymnBook, ActionUpdateHymnBook, ActionDeleteHymnBook,
		ActionCreateHymn, ActionUpdateHymn, ActionDeleteHymn,
		ActionCreateMapping, ActionUpdateMapping, ActionDeleteMapping,
		ActionReadAuditLog, ActionCleanupAuditLog,
	}
}

// PermissionNames returns AllActions as plain strings.
func PermissionNames() []string {
	actions := AllActions()
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return names
}

// selfService actions are open to every active user.
var selfService = map[Action]bool{
	ActionSetup2FA:  true,
	ActionVerify2FA: true,
}

// Policy decides whether an authenticated actor may perform an action.
// A deny is reported as false with a nil error.
type Policy interface {
	Can(ctx context.Context, actor *entities.User, action Action) (bool, error)
}

// FlagPolicy gates every action on the staff or superuser flag.
type FlagPolicy struct{}

func (FlagPolicy) Can(_ context.Context, actor *entities.User, action Action) (bool, error) {
	if actor == nil || !actor.IsActive {
		return false, nil
	}
	if selfService[action] {
		return true, nil
	}
	return actor.IsElevated(), nil
}

// PermissionChecker answers graph lookups for the RBAC policy.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID uint, name string) (bool, error)
}

// RBACPolicy allows elevated actors outright and otherwise looks for a path
// user -> role -> permission named after the action.
type RBACPolicy struct {
	checker PermissionChecker
}

func NewRBACPolicy(checker PermissionChecker) *RBACPolicy {
	return &RBACPolicy{checker: checker}
}

func (p *RBACPolicy) Can(ctx context.Context, actor *entities.User, action Action) (bool, error) {
	if actor == nil || !actor.IsActive {
		return false, nil
	}
	if actor.IsElevated() {
		return true, nil
	}
	ok, err := p.checker.HasPermission(ctx, actor.ID, string(action))
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", action, err)
	}
	return ok, nil
}

// NewPolicy selects the policy for the configured mode.
func NewPolicy(mode config.PolicyMode, checker PermissionChecker) (Policy, error) {
	switch mode {
	case config.PolicyFlags, "":
		return FlagPolicy{}, nil
	case config.PolicyRBAC:
		if checker == nil {
			return nil, fmt.Errorf("rbac policy requires a permission checker")
		}
		return NewRBACPolicy(checker), nil
	default:
		return nil, fmt.Errorf("unknown auth policy %q", mode)
	}
}
