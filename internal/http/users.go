package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/hymnal/internal/accounts"
	"github.com/mrlokans/hymnal/internal/auth"
)

type UsersController struct {
	accounts       *accounts.Service
	maxUploadBytes int64
}

func NewUsersController(accountService *accounts.Service, maxUploadBytes int64) *UsersController {
	return &UsersController{
		accounts:       accountService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Signup is public self-registration of a regular user.
// POST /api/v1/users
func (uc *UsersController) Signup(c *gin.Context) {
	var req accounts.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GET /api/v1/users/me
func (uc *UsersController) Me(c *gin.Context) {
	user, err := uc.accounts.Me(c.Request.Context(), auth.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// List returns active users.
// GET /api/v1/users
func (uc *UsersController) List(c *gin.Context) {
	skip, limit, ok := parsePagination(c, accounts.DefaultUserLimit)
	if !ok {
		return
	}
	list, err := uc.accounts.ListUsers(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/v1/users/:id
func (uc *UsersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.accounts.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /api/v1/users/:id
func (uc *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req accounts.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := uc.accounts.UpdateUser(c.Request.Context(), auth.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete soft-deletes a user.
// DELETE /api/v1/users/:id
func (uc *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := uc.accounts.DeleteUser(c.Request.Context(), auth.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}

// UploadImage stores a profile image. Permission is checked by the service
// because users may always update their own image.
// POST /api/v1/users/:id/image
func (uc *UsersController) UploadImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	data, contentType, ok := readUpload(c, uc.maxUploadBytes)
	if !ok {
		return
	}
	user, err := uc.accounts.UpdateUserImage(c.Request.Context(), auth.GetActor(c), id, data, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/v1/users/:id/roles
func (uc *UsersController) Roles(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	roles, err := uc.accounts.RolesForUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// POST /api/v1/users/:id/roles/:role_id
func (uc *UsersController) AssignRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseIDParam(c, "role_id")
	if !ok {
		return
	}
	if err := uc.accounts.AssignRole(c.Request.Context(), auth.GetActor(c), userID, roleID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "role assigned"})
}

// DELETE /api/v1/users/:id/roles/:role_id
func (uc *UsersController) RevokeRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	roleID, ok := parseIDParam(c, "role_id")
	if !ok {
		return
	}
	if err := uc.accounts.RevokeRole(c.Request.Context(), auth.GetActor(c), userID, roleID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "role revoked"})
}
