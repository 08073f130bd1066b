package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hymnal/internal/config"
	"github.com/mrlokans/hymnal/internal/database/dbtest"
	"github.com/mrlokans/hymnal/internal/database/rbac"
	"github.com/mrlokans/hymnal/internal/entities"
)

func TestFlagPolicy(t *testing.T) {
	ctx := context.Background()
	regular := &entities.User{ID: 1, IsActive: true}
	staff := &entities.User{ID: 2, IsActive: true, IsStaff: true}
	super := &entities.User{ID: 3, IsActive: true, IsSuperuser: true}
	inactiveStaff := &entities.User{ID: 4, IsActive: false, IsStaff: true}

	tests := []struct {
		name   string
		actor  *entities.User
		action Action
		want   bool
	}{
		{"regular user cannot mutate hymns", regular, ActionUpdateHymn, false},
		{"staff can mutate hymns", staff, ActionUpdateHymn, true},
		{"superuser can mutate hymns", super, ActionCreateHymnBook, true},
		{"regular user can set up 2fa", regular, ActionSetup2FA, true},
		{"regular user can verify 2fa", regular, ActionVerify2FA, true},
		{"inactive staff denied", inactiveStaff, ActionUpdateHymn, false},
		{"nil actor denied", nil, ActionSetup2FA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FlagPolicy{}.Can(ctx, tt.actor, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRBACPolicy(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := rbac.NewRepository(db.DB)
	policy := NewRBACPolicy(repo)

	user := &entities.User{Username: "editor", Email: "editor@example.com", HashedPassword: "x", IsActive: true}
	require.NoError(t, db.DB.Create(user).Error)
	role := &entities.Role{Name: "editor"}
	require.NoError(t, repo.CreateRole(ctx, role))
	require.NoError(t, repo.SeedPermissions(ctx, PermissionNames()))

	var createHymn entities.Permission
	require.NoError(t, db.DB.Where("name = ?", string(ActionCreateHymn)).First(&createHymn).Error)

	t.Run("no role means deny", func(t *testing.T) {
		ok, err := policy.Can(ctx, user, ActionCreateHymn)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	require.NoError(t, repo.AssignRole(ctx, user.ID, role.ID))

	t.Run("role without the permission denies", func(t *testing.T) {
		ok, err := policy.Can(ctx, user, ActionCreateHymn)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	require.NoError(t, repo.AssignPermission(ctx, role.ID, createHymn.ID))

	t.Run("granted permission allows", func(t *testing.T) {
		ok, err := policy.Can(ctx, user, ActionCreateHymn)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("other permissions still denied", func(t *testing.T) {
		ok, err := policy.Can(ctx, user, ActionDeleteHymn)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("2fa is not self-service under rbac", func(t *testing.T) {
		ok, err := policy.Can(ctx, user, ActionSetup2FA)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("flags short-circuit", func(t *testing.T) {
		staff := &entities.User{ID: 999, IsActive: true, IsStaff: true}
		ok, err := policy.Can(ctx, staff, ActionDeleteUser)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

type failingChecker struct{}

func (failingChecker) HasPermission(context.Context, uint, string) (bool, error) {
	return false, errors.New("database is down")
}

func TestRBACPolicy_CheckerError(t *testing.T) {
	policy := NewRBACPolicy(failingChecker{})
	ok, err := policy.Can(context.Background(), &entities.User{ID: 1, IsActive: true}, ActionCreateHymn)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy(config.PolicyFlags, nil)
	require.NoError(t, err)
	assert.IsType(t, FlagPolicy{}, p)

	p, err = NewPolicy(config.PolicyRBAC, failingChecker{})
	require.NoError(t, err)
	assert.IsType(t, &RBACPolicy{}, p)

	_, err = NewPolicy(config.PolicyRBAC, nil)
	assert.Error(t, err)

	_, err = NewPolicy("acl", nil)
	assert.Error(t, err)
}

func TestPermissionNames(t *testing.T) {
	names := PermissionNames()
	assert.Len(t, names, len(AllActions()))
	assert.Contains(t, names, "create_hymn")
	assert.Contains(t, names, "read_audit_log")

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate action %s", n)
		seen[n] = true
	}
}
