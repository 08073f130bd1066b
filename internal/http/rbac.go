package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/accounts"
	"github.com/mrlokans/hymnal/internal/auth"
)

type RBACController struct {
	accounts *accounts.Service
}

func NewRBACController(accountService *accounts.Service) *RBACController {
	return &RBACController{accounts: accountService}
}

// GET /api/v1/roles
func (rc *RBACController) ListRoles(c *gin.Context) {
	skip, limit, ok := parsePagination(c, accounts.DefaultRoleLimit)
	if !ok {
		return
	}
	roles, err := rc.accounts.ListRoles(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// POST /api/v1/roles
func (rc *RBACController) CreateRole(c *gin.Context) {
	var req accounts.NamedInput
	if !bindJSON(c, &req) {
		return
	}
	role, err := rc.accounts.CreateRole(c.Request.Context(), auth.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// GET /api/v1/permissions
func (rc *RBACController) ListPermissions(c *gin.Context) {
	skip, limit, ok := parsePagination(c, accounts.DefaultRoleLimit)
	if !ok {
		return
	}
	perms, err := rc.accounts.ListPermissions(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// POST /api/v1/permissions
func (rc *RBACController) CreatePermission(c *gin.Context) {
	var req accounts.NamedInput
	if !bindJSON(c, &req) {
		return
	}
	perm, err := rc.accounts.CreatePermission(c.Request.Context(), auth.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, perm)
}

// POST /api/v1/roles/:id/permissions/:permission_id
func (rc *RBACController) AssignPermission(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	permissionID, ok := parseIDParam(c, "permission_id")
	if !ok {
		return
	}
	if err := rc.accounts.AssignPermission(c.Request.Context(), auth.GetActor(c), roleID, permissionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "permission assigned"})
}

// DELETE /api/v1/roles/:id/permissions/:permission_id
func (rc *RBACController) RevokePermission(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	permissionID, ok := parseIDParam(c, "permission_id")
	if !ok {
		return
	}
	if err := rc.accounts.RevokePermission(c.Request.Context(), auth.GetActor(c), roleID, permissionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "permission revoked"})
}
